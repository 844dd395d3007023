package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"staybook/pkg/logger"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"
)

var reRequestID = regexp.MustCompile(`^[A-Za-z0-9\-_.]{8,64}$`)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := requestIDFrom(r)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			r = r.WithContext(ctx)
			w.Header().Set(RequestIDHeader, requestID)

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			log.Debug("HTTP request started",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			switch {
			case wrapped.statusCode >= http.StatusInternalServerError:
				log.Error("HTTP request completed", attrs...)
			case wrapped.statusCode >= http.StatusBadRequest:
				log.Warn("HTTP request completed", attrs...)
			default:
				log.Info("HTTP request completed", attrs...)
			}
		})
	}
}

// requestIDFrom reuses a well-formed caller supplied id so traces can be
// followed across services.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); reRequestID.MatchString(id) {
		return id
	}
	return uuid.NewString()
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
