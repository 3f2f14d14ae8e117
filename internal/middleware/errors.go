package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tracecalc/internal/domain/dto"
	"github.com/guttosm/tracecalc/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a 500 response when
// the handler returned without writing one.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last()
	logger.Ctx(c.Request.Context()).Error().Err(err.Err).Msg("unhandled request error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err.Err))
}

// AbortWithError records err on the context (so tracing and logging see it)
// and aborts with status and the standard error body built from message and err.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
