package middleware

import (
	"net/http"
	"sync"
	"time"

	"yamdb/pkg/apperror"
	"yamdb/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		idle:     time.Hour,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	if rl.rate <= 0 {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	entry, ok := rl.limiters[ip]
	if !ok {
		// drop idle buckets lazily so the map stays bounded by active clients
		if len(rl.limiters) > 1024 {
			rl.evictIdle(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	threshold := now.Add(-rl.idle)
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			response.ResponseError(c, apperror.New(http.StatusTooManyRequests, "too many requests, slow down", apperror.ErrRateLimitExceeded))
			return
		}
		c.Next()
	}
}
