/*
Package tracing wires the service to OpenTelemetry.

It owns three integration points:

  - Setup builds and registers the process-wide TracerProvider and exporter.
  - Connect attaches the HTTP tracing middleware to a gin engine.
  - Wrap / WrapValue turn a plain function into an instrumented one that
    opens a span per call, forwards arguments and propagates errors unchanged.

Usage:

	provider, err := tracing.Setup(ctx, config.AppConfig.Tracing)
	defer provider.Shutdown(ctx)

	router := gin.New()
	tracing.Connect(router)

	sum := tracing.Wrap("calculator.sum", sumFn, tracing.WithReturnValue())
*/
package tracing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/guttosm/tracecalc/config"
	"github.com/guttosm/tracecalc/internal/logger"
)

// ErrProviderClosed is returned by Ready after Shutdown.
var ErrProviderClosed = errors.New("tracer provider is shut down")

// Provider owns the SDK TracerProvider registered as the global provider.
type Provider struct {
	tp     *sdktrace.TracerProvider
	closed atomic.Bool
}

// exporterFactory is an indirection for unit testing; defaults to newExporter.
var exporterFactory = newExporter

// Setup creates the TracerProvider described by cfg, registers it globally
// together with W3C trace-context and baggage propagation, and returns it.
//
// With the "none" exporter spans are still created and sampled, so log lines
// keep their trace_id/span_id correlation, but nothing leaves the process.
func Setup(ctx context.Context, cfg config.TracingConfig, extra ...sdktrace.TracerProviderOption) (*Provider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"", // use the SchemaURL from the default resource
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build tracing resource: %w", err)
	}

	exporter, err := exporterFactory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s exporter: %w", cfg.Exporter, err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	opts = append(opts, extra...)

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Named("tracing").Info().
		Str("service", cfg.ServiceName).
		Str("exporter", cfg.Exporter).
		Str("endpoint", cfg.Endpoint).
		Float64("sample_ratio", cfg.SampleRatio).
		Msg("tracing initialized")

	return &Provider{tp: tp}, nil
}

func newExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	var exporter *otlptrace.Exporter
	var err error

	switch cfg.Exporter {
	case config.ExporterNone, "":
		return nil, nil
	case config.ExporterOTLPGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case config.ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown exporter %q, specify none, otlp-grpc or otlp-http", cfg.Exporter)
	}
	if err != nil {
		return nil, err
	}
	return exporter, nil
}

// TracerProvider exposes the underlying SDK provider.
func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	return p.tp
}

// Ready reports whether the provider still accepts spans.
func (p *Provider) Ready() error {
	if p == nil || p.closed.Load() {
		return ErrProviderClosed
	}
	return nil
}

// Shutdown flushes pending spans and stops the provider. Calling it more
// than once is a no-op.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}
