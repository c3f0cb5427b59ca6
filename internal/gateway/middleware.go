package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/eleven-am/auteur/internal/shared"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
	// KeyFunc picks the bucket for a request. Defaults to the client IP.
	KeyFunc func(c echo.Context) string
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		CleanupInterval:   5 * time.Minute,
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiterStore struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	config   RateLimiterConfig
}

func newRateLimiterStore(cfg RateLimiterConfig) *rateLimiterStore {
	store := &rateLimiterStore{
		limiters: make(map[string]*limiterEntry),
		config:   cfg,
	}
	if cfg.CleanupInterval > 0 {
		go store.cleanupLoop()
	}
	return store
}

func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.limiters[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}

	e := &limiterEntry{
		limiter:  rate.NewLimiter(rate.Limit(s.config.RequestsPerSecond), s.config.Burst),
		lastSeen: time.Now(),
	}
	s.limiters[key] = e
	return e.limiter
}

func (s *rateLimiterStore) evictIdle(olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.limiters {
		if e.lastSeen.Before(olderThan) {
			delete(s.limiters, key)
			n++
		}
	}
	return n
}

func (s *rateLimiterStore) cleanupLoop() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.evictIdle(time.Now().Add(-s.config.CleanupInterval))
	}
}

func RateLimiter(cfg RateLimiterConfig) echo.MiddlewareFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}
	store := newRateLimiterStore(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.getLimiter(cfg.KeyFunc(c)).Allow() {
				return shared.NewAPIError("rate_limit_exceeded", "too many requests").ToHTTP(http.StatusTooManyRequests)
			}
			return next(c)
		}
	}
}
