package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tracecalc/internal/domain/dto"
)

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return body.Detail
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/", func(c *gin.Context) { _ = c.Error(assertErr{}) })
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(assertErr{})
		c.String(http.StatusAccepted, "handled")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
	if d := decodeDetail(t, w); d != "Internal server error: boom" {
		t.Fatalf("detail=%q", d)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("already written response overwritten: code=%d", w.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
	if d := decodeDetail(t, w); d != "Internal server error: boom" {
		t.Fatalf("detail=%q", d)
	}
}

func TestRateLimiter(t *testing.T) {
	cases := []struct {
		name   string
		reqs   int
		burst  int
		expect int
	}{
		{name: "within limit", reqs: 2, burst: 3, expect: http.StatusOK},
		{name: "exceed limit", reqs: 5, burst: 3, expect: http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RateLimiter(0.001, tc.burst))
			r.GET("/", func(c *gin.Context) { c.String(200, "ok") })
			var last *httptest.ResponseRecorder
			for i := 0; i < tc.reqs; i++ {
				last = httptest.NewRecorder()
				r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
			}
			if last.Code != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, last.Code)
			}
			if tc.expect == http.StatusTooManyRequests && decodeDetail(t, last) != "rate limit exceeded" {
				t.Fatalf("unexpected body %q", last.Body.String())
			}
		})
	}
}

func TestIPLimiter_PerClientAndEviction(t *testing.T) {
	l := newIPLimiter(0.001, 1)
	now := time.Now()

	if !l.allow("10.0.0.1", now) || l.allow("10.0.0.1", now) {
		t.Fatalf("expected exactly one request allowed for 10.0.0.1")
	}
	if !l.allow("10.0.0.2", now) {
		t.Fatalf("second client must have its own bucket")
	}

	later := now.Add(idleTTL + time.Second)
	if !l.allow("10.0.0.3", later) {
		t.Fatalf("fresh client rejected")
	}
	if _, ok := l.clients["10.0.0.1"]; ok {
		t.Fatalf("idle client not evicted")
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var recorded int
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = len(c.Errors)
	})
	r.GET("/err", func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, "bad stuff", assertErr{})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "" {
		t.Fatalf("expected content-type set")
	}
	if d := decodeDetail(t, w); d != "bad stuff: boom" {
		t.Fatalf("detail=%q", d)
	}
	if recorded != 1 {
		t.Fatalf("expected error recorded on context, got %d", recorded)
	}
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		if !ok || time.Until(deadline) > 50*time.Millisecond {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("deadline not attached, code=%d", w.Code)
	}
}
