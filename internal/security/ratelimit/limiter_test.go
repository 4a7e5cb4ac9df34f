package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newMemCounter() *memCounter {
	return &memCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (m *memCounter) Incr(_ context.Context, key string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memCounter) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.expires[key] = ttl
	return nil
}

func TestAllowWithinLimit(t *testing.T) {
	counter := newMemCounter()
	limiter := NewLimiter(counter, 3, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "user-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow(ctx, "user-1") {
		t.Fatalf("fourth request should be denied")
	}

	// Other identities are unaffected.
	if !limiter.Allow(ctx, "user-2") {
		t.Fatalf("separate identity should be allowed")
	}

	if len(counter.expires) != 2 {
		t.Fatalf("expected a window TTL per identity, got %d", len(counter.expires))
	}
}

func TestAllowEmptyIdentity(t *testing.T) {
	limiter := NewLimiter(newMemCounter(), 1, time.Minute, nil)
	if !limiter.Allow(context.Background(), "") {
		t.Fatalf("empty identity must pass through")
	}
}

func TestAllowFailsOpenOnBackendError(t *testing.T) {
	counter := newMemCounter()
	counter.err = errors.New("connection refused")
	limiter := NewLimiter(counter, 1, time.Minute, nil)

	if !limiter.Allow(context.Background(), "user-1") {
		t.Fatalf("limiter must fail open when the backend is down")
	}
}
