package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var (
	base  zerolog.Logger
	ready atomic.Bool

	namedMu sync.RWMutex
	named   = map[string]*zerolog.Logger{}
)

// Init configures the global JSON logger.
//
// Environment variables (optional):
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false)
func Init() {
	level := parseLevel(getenv("LOG_LEVEL", "info"))
	pretty := strings.EqualFold(getenv("LOG_PRETTY", "false"), "true")

	zerolog.TimeFieldFormat = time.RFC3339Nano
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	SetOutput(w, level)
}

// SetOutput replaces the global logger with one writing to w at the given
// level. Named loggers created earlier are dropped so they pick up the new
// sink on next use.
func SetOutput(w io.Writer, level zerolog.Level) {
	base = zerolog.New(w).With().Timestamp().Logger().Level(level)
	ready.Store(true)

	namedMu.Lock()
	named = map[string]*zerolog.Logger{}
	namedMu.Unlock()
}

// L returns the global logger. Call Init() once on startup.
func L() *zerolog.Logger {
	if !ready.Load() {
		Init()
	}
	return &base
}

// Named returns the process-wide logger registered under name, creating it on
// first use. Every entry it writes carries a "logger" field.
func Named(name string) *zerolog.Logger {
	namedMu.RLock()
	l, ok := named[name]
	namedMu.RUnlock()
	if ok {
		return l
	}

	parent := L()
	namedMu.Lock()
	defer namedMu.Unlock()
	if l, ok = named[name]; ok {
		return l
	}
	child := parent.With().Str("logger", name).Logger()
	named[name] = &child
	return &child
}

// Ctx returns the global logger enriched with the trace and span ids of the
// span active in ctx. Without a valid span it is the plain global logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	return withSpan(ctx, L())
}

// NamedCtx is Named with the trace correlation fields of Ctx.
func NamedCtx(ctx context.Context, name string) *zerolog.Logger {
	return withSpan(ctx, Named(name))
}

func withSpan(ctx context.Context, l *zerolog.Logger) *zerolog.Logger {
	if ctx == nil {
		return l
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	out := l.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
