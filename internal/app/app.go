package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tracecalc/config"
	"github.com/guttosm/tracecalc/internal/api"
	"github.com/guttosm/tracecalc/internal/metrics"
	"github.com/guttosm/tracecalc/internal/service"
	"github.com/guttosm/tracecalc/internal/tracing"
)

// tracingSetup is an indirection used by InitializeApp; overridden in tests.
var tracingSetup = tracing.Setup

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Installs the global tracer provider (tracing.Setup).
//   - Creates the Prometheus collectors.
//   - Initializes the service layer (Calculator).
//   - Creates the HTTP handler layer and the Gin router.
//   - Registers health and readiness probes.
//   - Provides a cleanup function that flushes pending spans.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(context.Context) error: cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp(ctx context.Context) (*gin.Engine, func(context.Context) error, error) {
	cfg := config.AppConfig

	provider, err := tracingSetup(ctx, cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	m := metrics.New()

	// Initialize service layer (business logic)
	svc := service.NewCalculator(cfg.Calc.Delay)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc, m)

	router := api.NewRouter(handler, m, cfg)

	// Readiness follows the tracing pipeline
	api.NewHealthHandler(provider.Ready).Register(router)

	cleanup := func(ctx context.Context) error {
		return provider.Shutdown(ctx)
	}

	return router, cleanup, nil
}
