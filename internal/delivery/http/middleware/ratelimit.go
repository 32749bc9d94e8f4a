package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	h "hirelens/internal/delivery/http/helpers"

	"golang.org/x/time/rate"
)

// RateLimiterConfig sets the per-user token bucket.
type RateLimiterConfig struct {
	PerMinute       float64
	Burst           int
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig allows 10 booking attempts a minute per user.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		PerMinute:       10,
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
	}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one limiter per authenticated user. Idle entries are
// evicted after twice the cleanup interval.
type RateLimiter struct {
	perMinute float64
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	limiters map[string]*userLimiter
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter starts the background cleanup. Call Stop when done.
func NewRateLimiter(cfg RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	d := DefaultRateLimiterConfig()
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = d.PerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.PerMinute))
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = d.CleanupInterval
	}
	rl := &RateLimiter{
		perMinute: cfg.PerMinute,
		limit:     rate.Limit(cfg.PerMinute / 60),
		burst:     cfg.Burst,
		ttl:       cfg.CleanupInterval * 2,
		logger:    logger,
		limiters:  make(map[string]*userLimiter),
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
	go rl.cleanupLoop(cfg.CleanupInterval)
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware must run after RequireAuth; it keys on the principal's user id.
func (rl *RateLimiter) Middleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
				return
			}
			if !rl.allow(p.UserID) {
				rl.logger.WarnContext(r.Context(), "rate limit exceeded", "user_id", p.UserID, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
				h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeRateLimited, "too many requests, try again later")
				return
			}
			next(w, r)
		}
	}
}

// Len reports how many users currently hold a limiter.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) allow(userID string) bool {
	now := rl.now()
	rl.mu.Lock()
	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[userID] = ul
	}
	ul.lastAccess = now
	rl.mu.Unlock()
	return ul.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) retryAfterSeconds() int {
	return max(1, int(math.Ceil(60/rl.perMinute)))
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > rl.ttl {
			delete(rl.limiters, id)
		}
	}
}
