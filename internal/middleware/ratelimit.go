package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/sakif/profile-lookup/internal/auth"
)

// KeyFunc selects the identity a request is rate limited under.
type KeyFunc func(*http.Request) string

// KeyBySessionOrIP prefers the browser session set by auth.Session and
// falls back to the client IP. Keys are prefixed so the two namespaces
// cannot collide.
func KeyBySessionOrIP() KeyFunc {
	return func(r *http.Request) string {
		if id, ok := auth.SessionIDFromContext(r.Context()); ok {
			return "session:" + id
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		return "ip:" + host
	}
}

// visitor holds one token bucket and when it was last used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter. Buckets are created on
// demand; idle ones are evicted every cleanupEvery lookups.
//
// Lookups that reach GitHub are expensive (the anonymous API allows 60 per
// hour per server IP), so the limiter sits in front of the lookup routes.
//
// This type is safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	cleanupN uint64
}

const cleanupEvery = 5000

// NewRateLimiter creates a limiter allowing rps requests per second with
// the given burst per key. burst <= 0 is coerced to 1.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the limiter for key, creating it if absent. The idle
// sweep runs before the requested entry is touched so a stale bucket can be
// evicted even when it is the one being asked for.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= cleanupEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler returns the middleware. Requests over the limit get 429 with a
// small JSON body and Retry-After: 1.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.getVisitor(rl.keyFn(r)).Allow() {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"request_id": chimiddleware.GetReqID(r.Context()),
			"error":      "rate_limited",
			"message":    "too many lookups, slow down",
		})
	})
}
