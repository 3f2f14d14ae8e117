package api

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/tracecalc/config"
	"github.com/guttosm/tracecalc/internal/metrics"
	"github.com/guttosm/tracecalc/internal/middleware"
	"github.com/guttosm/tracecalc/internal/tracing"
)

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, tracing, Logger, metrics, Recovery, CORS, RateLimiter, Timeout).
//   - Mounts Swagger docs (/swagger/*any) and Prometheus metrics (/metrics).
//   - Configures the calculation route at /calculate and /api/v1/calculate.
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, m *metrics.Metrics, cfg config.Config) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(middleware.RequestID())
	tracing.Connect(router)
	router.Use(
		middleware.RequestLogger(),
		m.Middleware(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		corsMiddleware(cfg.Server.AllowedOrigins),
		middleware.RateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	// ─── Operational ──────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", m.Handler())

	// ─── Calculation ──────────────────────────────
	router.POST("/calculate", handler.Calculate)
	v1 := router.Group("/api/v1")
	{
		v1.POST("/calculate", handler.Calculate)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{middleware.RequestIDHeader, "traceparent"},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
