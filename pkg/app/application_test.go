package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/julienschmidt/httprouter"

	"staybook/pkg/client"
	"staybook/pkg/config"
	"staybook/pkg/logger"
)

type countingHandler struct {
	calls atomic.Int32
}

func (h *countingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/things", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"n":1}}`))
	})
	router.GET("/api/v1/panic", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		panic("boom")
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		CORSAllowedOrigin: "http://localhost:3000",
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
}

func newTestApp(t *testing.T, cfg *config.Config, h RouteRegistrar) http.Handler {
	t.Helper()
	a := NewApplication(cfg)
	a.SetApp(h)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a.Handler()
}

func post(h http.Handler, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/things", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthBypassesAppMiddleware(t *testing.T) {
	h := newTestApp(t, testConfig(), &countingHandler{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected ready with no stores connected, got %d", w.Code)
	}
}

func TestIdempotentReplay(t *testing.T) {
	handler := &countingHandler{}
	h := newTestApp(t, testConfig(), handler)

	first := post(h, `{}`, "key-1")
	second := post(h, `{}`, "key-1")

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("unexpected codes %d %d", first.Code, second.Code)
	}
	if handler.calls.Load() != 1 {
		t.Errorf("handler should run once, ran %d times", handler.calls.Load())
	}
}

func TestIdempotentReplay_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Client.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	handler := &countingHandler{}
	h := newTestApp(t, cfg, handler)

	post(h, `{}`, "key-2")
	post(h, `{}`, "key-2")
	if handler.calls.Load() != 1 {
		t.Errorf("handler should run once, ran %d times", handler.calls.Load())
	}
}

func TestRejectsNonJSONBody(t *testing.T) {
	h := newTestApp(t, testConfig(), &countingHandler{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/things", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestApp(t, testConfig(), &countingHandler{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/things", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("missing allow-origin header")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 2
	h := newTestApp(t, cfg, &countingHandler{})

	post(h, `{}`, "")
	post(h, `{}`, "")
	if w := post(h, `{}`, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}

func TestRecoversFromPanic(t *testing.T) {
	h := newTestApp(t, testConfig(), &countingHandler{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
