package ratelimit

import (
	"sync"
	"time"
)

// purgeEvery bounds how often elapsed windows are swept from the counter map
const purgeEvery = 256

type counterKey struct {
	identifier string
	window     int64
}

type counter struct {
	count   int64
	resetAt time.Time
}

// Decision is the outcome of a single admission check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// WindowLimiter is a single-process fixed-window admission controller.
// Counters live per (identifier, window index) and are created lazily.
// It is a fast-path shaper only; the hard ceiling is quota, enforced
// against the persisted store.
type WindowLimiter struct {
	mu       sync.Mutex
	counters map[counterKey]*counter
	checks   uint64

	now func() time.Time
}

// NewWindowLimiter creates a new limiter instance. Construct one per process
// and inject it into request handlers; tests construct isolated instances.
func NewWindowLimiter() *WindowLimiter {
	return &WindowLimiter{
		counters: make(map[counterKey]*counter),
		now:      time.Now,
	}
}

// Check admits or denies one request for the identifier under the given
// limit and window. The counter is always incremented, even past the limit,
// so sustained over-limit traffic is reflected in the count rather than
// resetting it early.
func (l *WindowLimiter) Check(identifier string, limit int, window time.Duration) Decision {
	now := l.now()
	windowIndex := now.UnixNano() / int64(window)
	resetAt := time.Unix(0, (windowIndex+1)*int64(window))

	key := counterKey{identifier: identifier, window: windowIndex}

	l.mu.Lock()
	c, ok := l.counters[key]
	if !ok {
		c = &counter{resetAt: resetAt}
		l.counters[key] = c
	}
	c.count++
	count := c.count

	l.checks++
	if l.checks%purgeEvery == 0 {
		l.purgeLocked(now)
	}
	l.mu.Unlock()

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	decision := Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}
	if !decision.Allowed {
		// Remaining time in the current window, rounded up to whole seconds
		left := resetAt.Sub(now)
		decision.RetryAfter = left.Truncate(time.Second)
		if decision.RetryAfter < left {
			decision.RetryAfter += time.Second
		}
	}
	return decision
}

// Size returns the number of live counters
func (l *WindowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// purgeLocked drops counters whose window has fully elapsed. Windows are
// disjoint, so a purged identifier that returns simply gets a fresh counter.
func (l *WindowLimiter) purgeLocked(now time.Time) {
	for key, c := range l.counters {
		if c.resetAt.Before(now) {
			delete(l.counters, key)
		}
	}
}
