package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/guttosm/tracecalc/internal/logger"
)

const (
	tracerName     = "github.com/guttosm/tracecalc"
	maxAttrValue   = 256
	paramAttrKey   = "code.params"
	returnAttrKey  = "code.return"
	durationAttrMs = "code.duration_ms"
)

// Start creates a span as a child of the span in ctx, or a root span when
// ctx carries none. The caller must End the span.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// Option tunes a wrapped function.
type Option func(*options)

type options struct {
	name   string
	params bool
	result bool
	attrs  []attribute.KeyValue
}

// WithSpanName overrides the span name given to Wrap.
func WithSpanName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithParams records the call argument as the code.params attribute.
func WithParams() Option {
	return func(o *options) { o.params = true }
}

// WithReturnValue records the returned value as the code.return attribute.
func WithReturnValue() Option {
	return func(o *options) { o.result = true }
}

// WithAttributes adds static attributes to every span.
func WithAttributes(kv ...attribute.KeyValue) Option {
	return func(o *options) { o.attrs = append(o.attrs, kv...) }
}

func newOptions(name string, opts []Option) *options {
	o := &options{name: name}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Wrap returns fn instrumented with a span per call. Arguments and the
// returned error pass through untouched; errors and panics are recorded on
// the span before being handed back to the caller.
func Wrap[In, Out any](name string, fn func(context.Context, In) (Out, error), opts ...Option) func(context.Context, In) (Out, error) {
	o := newOptions(name, opts)
	return func(ctx context.Context, in In) (out Out, err error) {
		ctx, span := o.begin(ctx, in)
		defer o.end(ctx, span, time.Now(), &err)

		out, err = fn(ctx, in)
		if err == nil && o.result {
			span.SetAttributes(attribute.String(returnAttrKey, format(out)))
		}
		return out, err
	}
}

// WrapValue is Wrap for functions that cannot fail.
func WrapValue[In, Out any](name string, fn func(context.Context, In) Out, opts ...Option) func(context.Context, In) Out {
	o := newOptions(name, opts)
	return func(ctx context.Context, in In) Out {
		ctx, span := o.begin(ctx, in)
		defer o.end(ctx, span, time.Now(), nil)

		out := fn(ctx, in)
		if o.result {
			span.SetAttributes(attribute.String(returnAttrKey, format(out)))
		}
		return out
	}
}

func (o *options) begin(ctx context.Context, in any) (context.Context, trace.Span) {
	ctx, span := Start(ctx, o.name, o.attrs...)
	if o.params {
		span.SetAttributes(attribute.String(paramAttrKey, format(in)))
	}
	logger.NamedCtx(ctx, "tracing").Debug().Str("span", o.name).Msg("enter")
	return ctx, span
}

// end must be deferred directly so that recover sees the wrapped call's panic.
func (o *options) end(ctx context.Context, span trace.Span, start time.Time, errp *error) {
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int64(durationAttrMs, elapsed.Milliseconds()))

	if r := recover(); r != nil {
		span.RecordError(fmt.Errorf("panic: %v", r))
		span.SetStatus(codes.Error, "panic")
		span.End()
		panic(r)
	}

	if errp != nil && *errp != nil {
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	}
	span.End()

	logger.NamedCtx(ctx, "tracing").Debug().
		Str("span", o.name).
		Dur("elapsed", elapsed).
		Msg("exit")
}

func format(v any) string {
	s := fmt.Sprint(v)
	if len(s) > maxAttrValue {
		return s[:maxAttrValue] + "..."
	}
	return s
}
