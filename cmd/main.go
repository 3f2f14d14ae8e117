package main

//
//  @title           tracecalc API
//  @version         1.0
//  @description     Traced integer aggregation service.
//  @termsOfService  https://github.com/guttosm/tracecalc
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tracecalc
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:9999
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        calculate
//  @tag.description Sum, average and count over a list of integers
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tracecalc/config"
	_ "github.com/guttosm/tracecalc/docs" // swagger docs
	"github.com/guttosm/tracecalc/internal/app"
	"github.com/guttosm/tracecalc/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// newServer builds the HTTP server for router listening on host:port.
func newServer(router http.Handler, host, port string) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// run serves until ctx is cancelled or the listener fails, then shuts the
// server down and runs cleanup (tracer flush) under a shutdown deadline.
//
// Returns:
//   - error: the listener failure, if any, joined with shutdown and cleanup errors.
func run(ctx context.Context, server *http.Server, cleanup func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if cerr := cleanup(shutdownCtx); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return err
	})

	return g.Wait()
}

// main is the entry point of the tracecalc service.
//
// Flags:
//   - --host: Interface to bind. Defaults to SERVER_HOST (0.0.0.0).
//   - --port: Port to listen on. Defaults to SERVER_PORT (9999).
func main() {
	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	host := flag.String("host", config.AppConfig.Server.Host, "Interface to bind")
	port := flag.String("port", config.AppConfig.Server.Port, "Port to listen on")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, cleanup, err := app.InitializeApp(ctx)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("app init error")
	}

	if err := run(ctx, newServer(router, *host, *port), cleanup); err != nil {
		logger.L().Fatal().Err(err).Msg("server stopped with error")
	}
	logger.L().Info().Msg("server exited gracefully")
}
