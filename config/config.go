package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_HOST=0.0.0.0
//	SERVER_PORT=9999
//	SERVICE_NAME=tracecalc
//	TRACING_EXPORTER=otlp-grpc
//	TRACING_ENDPOINT=localhost:4317
//	CALC_DELAY=100ms
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Tracing   TracingConfig   // OpenTelemetry provider and exporter settings
	Calc      CalcConfig      // Calculator behaviour
	RateLimit RateLimitConfig // Per-client request throttling
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        // Interface to bind (e.g., "0.0.0.0")
	Port           string        // The TCP port the HTTP server will listen on (e.g., "9999")
	RequestTimeout time.Duration // Deadline attached to every request context
	AllowedOrigins []string      // CORS allowed origins; "*" allows all
}

// TracingConfig defines how spans are sampled and where they are exported.
//
// Fields:
//   - ServiceName: value of the service.name resource attribute.
//   - Exporter: one of "none", "otlp-grpc", "otlp-http".
//   - Endpoint: collector host:port for the OTLP exporters.
//   - Insecure: disable TLS towards the collector.
//   - SampleRatio: fraction of root traces to sample (0..1).
type TracingConfig struct {
	ServiceName string
	Exporter    string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// CalcConfig holds calculator settings.
type CalcConfig struct {
	Delay time.Duration // Simulated downstream latency before aggregation
}

// RateLimitConfig holds the per-IP token bucket settings.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Supported values for TracingConfig.Exporter.
const (
	ExporterNone     = "none"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If any value is missing or invalid, the app terminates with a descriptive log message.
func LoadConfig() {
	setDefaults()

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Host:           viper.GetString("SERVER_HOST"),
			Port:           viper.GetString("SERVER_PORT"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Tracing: TracingConfig{
			ServiceName: viper.GetString("SERVICE_NAME"),
			Exporter:    strings.ToLower(viper.GetString("TRACING_EXPORTER")),
			Endpoint:    viper.GetString("TRACING_ENDPOINT"),
			Insecure:    viper.GetBool("TRACING_INSECURE"),
			SampleRatio: viper.GetFloat64("TRACING_SAMPLE_RATIO"),
		},
		Calc: CalcConfig{
			Delay: viper.GetDuration("CALC_DELAY"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := Validate(AppConfig); err != nil {
		log.Fatalf("invalid configuration: %v\n", err)
	}
}

func setDefaults() {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "9999")
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.SetDefault("SERVICE_NAME", "tracecalc")
	viper.SetDefault("TRACING_EXPORTER", ExporterNone)
	viper.SetDefault("TRACING_ENDPOINT", "localhost:4317")
	viper.SetDefault("TRACING_INSECURE", true)
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	viper.SetDefault("CALC_DELAY", "100ms")

	viper.SetDefault("RATE_LIMIT_RPS", 50)
	viper.SetDefault("RATE_LIMIT_BURST", 100)
}

// Validate checks every field LoadConfig depends on and reports all
// problems at once.
func Validate(cfg Config) error {
	var problems []string

	if cfg.Server.Port == "" {
		problems = append(problems, "SERVER_PORT is required")
	}
	if cfg.Server.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}
	if cfg.Tracing.ServiceName == "" {
		problems = append(problems, "SERVICE_NAME is required")
	}
	switch cfg.Tracing.Exporter {
	case ExporterNone:
	case ExporterOTLPGRPC, ExporterOTLPHTTP:
		if cfg.Tracing.Endpoint == "" {
			problems = append(problems, "TRACING_ENDPOINT is required for "+cfg.Tracing.Exporter)
		}
	default:
		problems = append(problems, fmt.Sprintf("TRACING_EXPORTER %q is not one of none|otlp-grpc|otlp-http", cfg.Tracing.Exporter))
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		problems = append(problems, "TRACING_SAMPLE_RATIO must be within [0,1]")
	}
	if cfg.Calc.Delay < 0 {
		problems = append(problems, "CALC_DELAY must not be negative")
	}
	if cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0 {
		problems = append(problems, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
