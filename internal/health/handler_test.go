package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"staybook/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(p Pinger, path string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewHandler(p, logger.Discard()).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := serve(pingFunc(func(ctx context.Context) error { return errors.New("down") }), "/health")
	if w.Code != http.StatusOK {
		t.Errorf("liveness must not depend on the store, got %d", w.Code)
	}
}

func TestReady(t *testing.T) {
	w := serve(pingFunc(func(ctx context.Context) error { return nil }), "/ready")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ready"`) {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = serve(pingFunc(func(ctx context.Context) error { return errors.New("connection refused") }), "/ready")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), `"unavailable"`) {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}
