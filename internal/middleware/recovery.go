package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tracecalc/internal/domain/dto"
	"github.com/guttosm/tracecalc/internal/logger"
)

// RecoveryMiddleware returns a Gin middleware that recovers from any panic,
// logs it with the stack trace, and responds 500 with the standard error body.
//
// Example:
//
//	router := gin.New()
//	router.Use(middleware.RecoveryMiddleware())
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("%v", r)
				logger.Ctx(c.Request.Context()).Error().
					Str("panic", err.Error()).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
			}
		}()

		c.Next()
	}
}
