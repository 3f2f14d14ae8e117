package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/guttosm/tracecalc/config"
	"github.com/guttosm/tracecalc/internal/tracing"
)

func testConfig() config.Config {
	return config.Config{
		Server:    config.ServerConfig{Port: "0", RequestTimeout: time.Second},
		Tracing:   config.TracingConfig{ServiceName: "tracecalc-test", Exporter: config.ExporterNone, SampleRatio: 1},
		Calc:      config.CalcConfig{Delay: 0},
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
	}
}

func useConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })
}

func TestInitializeApp_HappyPath(t *testing.T) {
	useConfig(t, testConfig())

	router, cleanup, err := InitializeApp(context.Background())
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: err=%v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(`[1,2,3,4]`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("calculate status=%d body=%s", w.Code, w.Body.String())
	}
	if want := `{"status":"success","data":{"total":10,"average":2,"count":4}}`; w.Body.String() != want {
		t.Fatalf("body=%s, want %s", w.Body.String(), want)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, w.Code)
		}
	}

	if err := cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz after cleanup status=%d, want 503", w.Code)
	}
}

func TestInitializeApp_InvalidExporter(t *testing.T) {
	cfg := testConfig()
	cfg.Tracing.Exporter = "zipkin"
	useConfig(t, cfg)

	r, cleanup, err := InitializeApp(context.Background())
	if err == nil || r != nil || cleanup != nil {
		t.Fatalf("expected error from InitializeApp with invalid exporter")
	}
}

func TestInitializeApp_TracingFailure(t *testing.T) {
	useConfig(t, testConfig())

	old := tracingSetup
	tracingSetup = func(context.Context, config.TracingConfig, ...sdktrace.TracerProviderOption) (*tracing.Provider, error) {
		return nil, errors.New("collector unreachable")
	}
	t.Cleanup(func() { tracingSetup = old })

	_, _, err := InitializeApp(context.Background())
	if err == nil || !strings.Contains(err.Error(), "collector unreachable") {
		t.Fatalf("expected wrapped tracing error, got %v", err)
	}
}
