package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"staybook/pkg/logger"
)

// KeyExtractor returns the identity a request is limited under. An empty
// key bypasses the limiter.
type KeyExtractor func(r *http.Request) string

// ClientRateLimiter is a sliding-window limiter keyed by client.
type ClientRateLimiter struct {
	mu           sync.Mutex
	requests     map[string][]time.Time
	limit        int
	window       time.Duration
	keyExtractor KeyExtractor
	log          *logger.Logger
	now          func() time.Time
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func NewClientRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *ClientRateLimiter {
	if extractor == nil {
		extractor = ClientIPExtractor
	}

	limiter := &ClientRateLimiter{
		requests:     make(map[string][]time.Time),
		limit:        limit,
		window:       window,
		keyExtractor: extractor,
		log:          log,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow records a request for key and reports whether it fits the window.
// The second result is how long until the oldest request leaves the window.
func (rl *ClientRateLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		return true, 0
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, rl.window - now.Sub(valid[0])
	}

	rl.requests[key] = append(valid, now)
	return true, 0
}

// RateLimit applies the limiter to write requests only; reads are cheap and
// browsing should never be throttled.
func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := limiter.keyExtractor(r)
			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"client", key,
					"path", r.URL.Path,
				)
				seconds := int(retryAfter.Seconds())
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPExtractor keys on the first X-Forwarded-For hop, falling back to
// the connection address.
func ClientIPExtractor(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
