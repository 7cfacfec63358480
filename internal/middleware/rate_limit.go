package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/set-night/groqchat/internal/domain"
)

const sweepThreshold = 10_000

// Limiter counts requests per key in fixed one-minute windows.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	start time.Time
	count int
}

func NewLimiter(perMinute int) *Limiter {
	return &Limiter{
		limit:   perMinute,
		window:  time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.buckets) > sweepThreshold {
		for k, b := range l.buckets {
			if now.Sub(b.start) >= l.window {
				delete(l.buckets, k)
			}
		}
	}

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.window {
		b = &bucket{start: now}
		l.buckets[key] = b
	}
	b.count++
	return b.count <= l.limit
}

// RateLimit returns middleware that enforces per-session rate limits on
// submissions. Reads are never limited.
func RateLimit(l *Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := GetSessionID(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			if !l.Allow(key) {
				slog.Debug("rate limited", "key", key, "limit", l.limit)
				w.Header().Set("Retry-After", "60")
				http.Error(w, domain.UserMessage(domain.ErrTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
