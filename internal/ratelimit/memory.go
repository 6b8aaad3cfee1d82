package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold bounds map growth from one-off identities.
const sweepThreshold = 10_000

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-process implementation of Limiter. Entries are
// ephemeral and not shared across replicas.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemoryLimiter creates a new in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Compile-time interface check.
var _ Limiter = (*MemoryLimiter)(nil)

// Admit records one request for key and reports whether it is allowed.
func (l *MemoryLimiter) Admit(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		if len(l.entries) >= sweepThreshold {
			l.sweep(now)
		}
		l.entries[key] = &entry{count: 1, resetAt: now.Add(window)}
		return Decision{Allowed: true, Remaining: limit - 1}, nil
	}

	if e.count >= limit {
		return Decision{
			Allowed:           false,
			RetryAfterSeconds: retryAfterSeconds(e.resetAt.Sub(now)),
		}, nil
	}

	e.count++
	return Decision{Allowed: true, Remaining: limit - e.count}, nil
}

// sweep drops expired entries. Caller holds the lock.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, k)
		}
	}
}
