package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/platinummonkey/cadmdt/pkg/httputil"
	"github.com/platinummonkey/cadmdt/pkg/observability"
)

// RateLimitConfig defines rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerWindow is the max requests allowed in the time window
	RequestsPerWindow int
	// WindowDuration is the time window for rate limiting
	WindowDuration time.Duration
	// BurstSize allows temporary bursts above the rate
	BurstSize int
}

// DefaultRateLimitConfig returns the limits for anonymous callers
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 100,
		WindowDuration:    time.Minute,
		BurstSize:         10,
	}
}

// PerUserRateLimitConfig returns per-user limits. Client gates call check-permission
// on every mount, so this is generous.
func PerUserRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 600,
		WindowDuration:    time.Minute,
		BurstSize:         60,
	}
}

func (c *RateLimitConfig) limit() rate.Limit {
	if c.RequestsPerWindow <= 0 || c.WindowDuration <= 0 {
		return rate.Inf
	}
	return rate.Every(c.WindowDuration / time.Duration(c.RequestsPerWindow))
}

func (c *RateLimitConfig) burst() int {
	return c.RequestsPerWindow + c.BurstSize
}

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Config() *RateLimitConfig
}

// RateLimiter is an in-process token bucket per key
type RateLimiter struct {
	config  *RateLimitConfig
	buckets map[string]*bucket
	mu      sync.Mutex
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	return &RateLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Config returns the limiter's configuration
func (rl *RateLimiter) Config() *RateLimitConfig {
	return rl.config
}

func (rl *RateLimiter) bucket(key string) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(rl.config.limit(), rl.config.burst())}
		rl.buckets[key] = b
	}
	b.lastSeen = rl.now()
	return b
}

// Allow checks if a request is allowed for the given key. It never fails.
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	b := rl.bucket(key)
	return b.limiter.AllowN(rl.now(), 1), nil
}

// Remaining returns the number of whole tokens left for a key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	b, exists := rl.buckets[key]
	rl.mu.Unlock()

	if !exists {
		return rl.config.burst()
	}
	tokens := int(b.limiter.TokensAt(rl.now()))
	if tokens < 0 {
		return 0
	}
	return tokens
}

// Cleanup removes buckets idle for more than two windows
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.config.WindowDuration*2 {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanup starts a background goroutine to cleanup old buckets
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.config.WindowDuration)
	go func() {
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}

// RateLimitMiddleware limits authenticated callers per user and everyone else per IP
type RateLimitMiddleware struct {
	userLimiter      Limiter
	anonymousLimiter Limiter
	metrics          *observability.Metrics
	name             string
}

// NewRateLimitMiddleware creates rate limiting middleware over the given limiters.
// name labels rejections in metrics ("local" or "redis").
func NewRateLimitMiddleware(user, anonymous Limiter, metrics *observability.Metrics, name string) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		userLimiter:      user,
		anonymousLimiter: anonymous,
		metrics:          metrics,
		name:             name,
	}
}

// Handler wraps an HTTP handler with rate limiting. Limiter errors fail open.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var key string
		limiter := m.anonymousLimiter

		if authCtx := GetAuthContext(r); authCtx != nil && authCtx.User != nil {
			key = fmt.Sprintf("user:%d", authCtx.User.ID)
			limiter = m.userLimiter
		} else {
			key = "ip:" + ClientIP(r)
		}

		allowed, err := limiter.Allow(r.Context(), key)
		if err != nil {
			observability.FromContext(r.Context()).
				WithField("limiter", m.name).
				WithError(err).
				Warn("Rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		config := limiter.Config()
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
		if !allowed {
			m.metrics.RecordRateLimitRejection(m.name)
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", config.WindowDuration.Seconds()))
			w.Header().Set("X-RateLimit-Remaining", "0")
			httputil.WriteTooManyRequests(w, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
