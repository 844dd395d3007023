package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"staybook/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	})
}

func decodeError(t *testing.T, body io.Reader) errorBody {
	t.Helper()
	var e errorBody
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return e
}

func TestRequestLogging_AssignsRequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/hotels/search", nil))

	if seen == "" {
		t.Fatal("expected request id in context")
	}
	if w.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q != context id %q", w.Header().Get(RequestIDHeader), seen)
	}
}

func TestRequestLogging_ReusesValidIncomingID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{"valid", "frontend-7f3a9c21", true},
		{"too short", "abc", false},
		{"injection", "id\nlevel=error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequestLogging(logger.Discard())(okHandler())
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(RequestIDHeader, tt.incoming)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			got := w.Header().Get(RequestIDHeader)
			if (got == tt.incoming) != tt.reuse {
				t.Errorf("got id %q, reuse=%v", got, tt.reuse)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if e := decodeError(t, w.Body); e.Code != "INTERNAL_ERROR" {
		t.Errorf("unexpected body %+v", e)
	}
}

func TestRequestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})

	w := httptest.NewRecorder()
	RequestTimeout(20*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", w.Code)
	}
	if strings.Contains(w.Body.String(), "late") {
		t.Errorf("late write leaked into response: %s", w.Body.String())
	}
}

func TestRequestTimeout_FastHandler(t *testing.T) {
	w := httptest.NewRecorder()
	RequestTimeout(time.Second)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK || w.Body.String() != `{"data":"ok"}` {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestContentTypeValidation(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{"json post", http.MethodPost, "application/json", `{}`, http.StatusOK},
		{"json with charset", http.MethodPut, "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"form post", http.MethodPost, "application/x-www-form-urlencoded", "a=b", http.StatusUnsupportedMediaType},
		{"missing header", http.MethodPost, "", `{}`, http.StatusUnsupportedMediaType},
		{"get ignores header", http.MethodGet, "", "", http.StatusOK},
		{"empty delete", http.MethodDelete, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			r := httptest.NewRequest(tt.method, "/api/v1/bookings", body)
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			ContentTypeValidation(logger.Discard())(okHandler()).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := MaxRequestSize(16)(echo)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	if w.Code != http.StatusOK {
		t.Errorf("small body: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("declared large body: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(bytes.Repeat([]byte("x"), 64))))
	r.ContentLength = -1
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("streamed large body: status = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS("https://staybook.example, https://admin.staybook.example")(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/hotels/search", nil)
	r.Header.Set("Origin", "https://admin.staybook.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.staybook.example" {
		t.Errorf("allowed origin header = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/hotels/search", nil)
	r.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin should not be allowed, got %q", got)
	}

	r = httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil)
	r.Header.Set("Origin", "https://staybook.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("preflight not answered: %d %v", w.Code, w.Header())
	}
}

func TestCORS_Wildcard(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	CORS("*")(okHandler()).ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("wildcard origin header = %q", got)
	}
}
