// Per-client rate limiting for mutating endpoints. Fixed-window counters
// keyed by caller IP.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows maxRate requests per client per window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	maxRate int
	period  time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a limiter and starts a background sweep of stale
// client entries.
func NewRateLimiter(maxRate int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		maxRate: maxRate,
		period:  period,
	}
	go func() {
		for {
			time.Sleep(10 * period)
			rl.sweep()
		}
	}()
	return rl
}

// Allow counts a request for the client, reporting whether it fits the
// current window.
func (rl *RateLimiter) Allow(client string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[client]
	if !ok || now.After(w.resetAt) {
		rl.windows[client] = &window{count: 1, resetAt: now.Add(rl.period)}
		return true
	}
	w.count++
	return w.count <= rl.maxRate
}

// RetryAfter returns seconds until the client's window resets.
func (rl *RateLimiter) RetryAfter(client string, now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.windows[client]
	if !ok || now.After(w.resetAt) {
		return 0
	}
	return int(w.resetAt.Sub(now).Seconds()) + 1
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	for client, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, client)
		}
	}
}

// Middleware rejects over-limit requests with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		now := time.Now()
		if !rl.Allow(client, now) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(client, now)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
