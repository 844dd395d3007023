package middleware

import (
	"net/http"
)

// MaxRequestSize rejects bodies over maxBytes. Declared lengths are refused
// up front; chunked bodies are cut off by http.MaxBytesReader while decoding.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "INVALID_INPUT", "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
