package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	msgRateLimitExceeded = "rate limit exceeded"

	// DefaultLimiterIdleTTL is how long a client's bucket survives without
	// requests before Prune drops it.
	DefaultLimiterIdleTTL = 3 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter implements token bucket rate limiting per client IP
type RateLimiter struct {
	limiters sync.Map // key -> *limiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
		now:   time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	v, ok := rl.limiters.Load(key)
	if !ok {
		v, _ = rl.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	entry := v.(*limiterEntry)
	entry.lastSeen.Store(rl.now().UnixNano())
	return entry.limiter
}

// Prune drops buckets that have seen no request for longer than idle and
// returns how many were removed. idle must exceed burst/rate, or a client
// could reset its bucket by pausing.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	if idle <= 0 {
		idle = DefaultLimiterIdleTTL
	}
	cutoff := rl.now().Add(-idle).UnixNano()

	removed := 0
	rl.limiters.Range(func(key, v any) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// StartPruning runs Prune every interval until ctx is done.
func (rl *RateLimiter) StartPruning(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Prune(idle)
			}
		}
	}()
}

// Len reports how many client buckets are tracked.
func (rl *RateLimiter) Len() int {
	n := 0
	rl.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware returns an Echo middleware function for rate limiting.
// Download requests are frequently anonymous, so the key is always the IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	limit := strconv.Itoa(rl.burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter("ip:" + c.RealIP())
			h := c.Response().Header()

			if !limiter.Allow() {
				h.Set("X-RateLimit-Limit", limit)
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", "1")

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": msgRateLimitExceeded,
				})
			}

			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

			return next(c)
		}
	}
}
