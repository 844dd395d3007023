package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staybook/pkg/logger"
)

func newTestLimiter(limit int, window time.Duration, now *time.Time) *ClientRateLimiter {
	rl := NewClientRateLimiter(limit, window, nil, logger.Discard())
	rl.now = func() time.Time { return *now }
	return rl
}

func TestClientRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(2, time.Minute, &now)
	defer rl.Stop()

	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Fatal("first request should pass")
	}
	now = now.Add(10 * time.Second)
	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Fatal("second request should pass")
	}
	ok, retry := rl.Allow("10.0.0.1")
	if ok {
		t.Fatal("third request should be limited")
	}
	if retry != 50*time.Second {
		t.Errorf("retry after = %s, want 50s", retry)
	}

	if ok, _ := rl.Allow("10.0.0.2"); !ok {
		t.Error("other clients are limited independently")
	}

	now = now.Add(51 * time.Second)
	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Error("request should pass once the oldest left the window")
	}
}

func TestClientRateLimiter_EmptyKeyBypasses(t *testing.T) {
	now := time.Now()
	rl := newTestLimiter(1, time.Minute, &now)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow(""); !ok {
			t.Fatal("empty key should never be limited")
		}
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	now := time.Now()
	rl := newTestLimiter(1, time.Minute, &now)
	defer rl.Stop()
	handler := RateLimit(rl)(okHandler())

	post := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		r.RemoteAddr = "192.0.2.10:51234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	if w := post(); w.Code != http.StatusOK {
		t.Fatalf("first post: status = %d", w.Code)
	}
	w := post()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second post: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/hotels/search", nil)
	r.RemoteAddr = "192.0.2.10:51234"
	gw := httptest.NewRecorder()
	handler.ServeHTTP(gw, r)
	if gw.Code != http.StatusOK {
		t.Errorf("reads should not be limited, status = %d", gw.Code)
	}
}

func TestClientIPExtractor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "192.0.2.10:51234"
	if got := ClientIPExtractor(r); got != "192.0.2.10" {
		t.Errorf("got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIPExtractor(r); got != "203.0.113.7" {
		t.Errorf("got %q", got)
	}
}
