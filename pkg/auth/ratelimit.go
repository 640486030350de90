package auth

import (
	"context"
	"sync"
	"time"
)

// AttemptLimiter checks whether a login attempt should be allowed for a
// given key (typically the submitted username or the client address).
// It exists to dampen credential brute-forcing on the authenticate endpoint;
// the per-request token decode path is never rate limited.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) error
}

// InProcessLimiter is a simple sliding-window limiter that tracks attempt
// counts per key in memory.
type InProcessLimiter struct {
	attemptsPerMinute int
	mu                sync.Mutex
	counters          map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates an attempt limiter. attemptsPerMinute <= 0
// disables limiting.
func NewInProcessLimiter(attemptsPerMinute int) *InProcessLimiter {
	return &InProcessLimiter{
		attemptsPerMinute: attemptsPerMinute,
		counters:          make(map[string]*counter),
	}
}

// Allow checks if the attempt is within the limit.
func (l *InProcessLimiter) Allow(_ context.Context, key string) error {
	if l.attemptsPerMinute <= 0 {
		return nil // no limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		// New window.
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.attemptsPerMinute {
		return ErrTooManyRequests
	}

	return nil
}
