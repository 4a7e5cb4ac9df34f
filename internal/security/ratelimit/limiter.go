package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Counter is the slice of the Redis client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Limiter is a fixed-window rate limiter backed by Redis, so the limit holds
// across replicas. Each identity gets a counter keyed by the current window;
// the first increment sets the window's TTL.
type Limiter struct {
	counter Counter
	maxReqs int
	window  time.Duration
	logger  *slog.Logger
}

func NewLimiter(counter Counter, maxRequests int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		counter: counter,
		maxReqs: maxRequests,
		window:  window,
		logger:  logger,
	}
}

// Allow reports whether the identity may proceed. When Redis is unreachable
// the limiter fails open: blocking all traffic on a cache outage would be
// worse than briefly not limiting it.
func (l *Limiter) Allow(ctx context.Context, identity string) bool {
	if identity == "" {
		return true
	}

	windowStart := time.Now().Unix() / int64(l.window.Seconds())
	key := fmt.Sprintf("ratelimit:%s:%d", identity, windowStart)

	count, err := l.counter.Incr(ctx, key)
	if err != nil {
		l.logger.Warn("rate limiter unavailable, failing open",
			slog.String("identity", identity),
			slog.String("error", err.Error()),
		)
		return true
	}

	if count == 1 {
		if err := l.counter.Expire(ctx, key, l.window); err != nil {
			l.logger.Warn("failed to set rate limit window ttl",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return count <= int64(l.maxReqs)
}
