package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aserras/webfront/internal/logger"
	"github.com/aserras/webfront/internal/request"
	"go.uber.org/zap"
)

// MemoryRateLimiter admits at most capacity requests per key within a
// rolling window, using one timestamp log per key. Expired timestamps
// are pruned lazily on access; there is no background sweep. State is
// process-local only and resets on restart.
type MemoryRateLimiter struct {
	capacity int
	window   time.Duration

	mu    sync.Mutex
	store map[string][]time.Time
	now   func() time.Time
}

// NewMemoryRateLimiter creates a limiter admitting capacity requests per
// window for each key.
func NewMemoryRateLimiter(capacity int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		capacity: capacity,
		window:   window,
		store:    make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Capacity returns the per-window request budget.
func (l *MemoryRateLimiter) Capacity() int {
	return l.capacity
}

// Window returns the limiter window duration.
func (l *MemoryRateLimiter) Window() time.Duration {
	return l.window
}

// Limited reports whether the request for key must be rejected. An
// admitted request is recorded; a rejected one is not, so a saturated
// key frees up exactly one slot when its oldest timestamp ages out.
func (l *MemoryRateLimiter) Limited(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.store[key]

	// Timestamps are appended in order, so expiry is a prefix trim.
	expired := 0
	for expired < len(stamps) && stamps[expired].Before(cutoff) {
		expired++
	}
	if expired > 0 {
		stamps = append(stamps[:0], stamps[expired:]...)
	}

	if len(stamps) >= l.capacity {
		l.store[key] = stamps
		return true
	}

	l.store[key] = append(stamps, now)
	return false
}

// RateLimit creates middleware that gates requests per client IP through
// the limiter before any handler logic runs.
func RateLimit(limiter *MemoryRateLimiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := request.ClientIP(r)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Capacity()))

			if limiter.Limited(key) {
				log.Warn("request_rate_limited",
					zap.String("ip", logger.SanitizeString(key, logger.MaxGeneralStringLength)),
					zap.String("path", logger.SanitizePath(r.URL.Path)),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"detail": "Too many requests. Please slow down.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
