package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// KeyedLimiter hands out one token bucket per key. A bucket left idle long
// enough to refill completely is indistinguishable from a new one, so it is
// swept; the map only holds clients seen within that window.
type KeyedLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*bucket
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows perInterval events per interval with the given burst.
func NewKeyedLimiter(perInterval int, interval time.Duration, burst int) *KeyedLimiter {
	limit := rate.Limit(float64(perInterval) / interval.Seconds())
	refill := interval
	if limit > 0 {
		refill = time.Duration(float64(burst) / float64(limit) * float64(time.Second))
	}
	return &KeyedLimiter{
		limiters: map[string]*bucket{},
		limit:    limit,
		burst:    burst,
		idle:     max(interval, refill),
		now:      time.Now,
	}
}

func (k *KeyedLimiter) Allow(key string) bool {
	k.mu.Lock()
	now := k.now()
	if now.Sub(k.lastSweep) >= k.idle {
		k.sweep(now)
	}
	b, ok := k.limiters[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = b
	}
	b.lastSeen = now
	k.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// Len is the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// sweep must be called with mu held.
func (k *KeyedLimiter) sweep(now time.Time) {
	for key, b := range k.limiters {
		if now.Sub(b.lastSeen) >= k.idle {
			delete(k.limiters, key)
		}
	}
	k.lastSweep = now
}

// RateLimit rejects requests over the per-client limit with 429. The key is
// the remote address host, which chi's RealIP has already rewritten.
func RateLimit(limiter *KeyedLimiter, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
