// Package ratelimit implements a fixed-window request counter keyed by
// (scope, client) pairs. State lives in process memory, so the guarantee is
// per-instance only; a shared counter store would be needed to scale out.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per key within fixed windows. Expired entries are
// swept lazily on each call to bound memory growth.
//
// Limiter is safe for concurrent use by multiple goroutines.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewLimiter creates a Limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// NewLimiterWithClock creates a Limiter with a custom clock (for testing).
func NewLimiterWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		entries: make(map[string]*windowEntry),
		now:     now,
	}
}

// Allow records one request for scope+client and reports whether it fits in
// the current window of maxRequests per window. When the request is rejected,
// retryAfter carries the whole seconds remaining until the window resets,
// rounded up, for use in a Retry-After header.
func (l *Limiter) Allow(scope, client string, maxRequests int, window time.Duration) (allowed bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	key := scope + ":" + client
	entry, ok := l.entries[key]
	if !ok || !entry.resetAt.After(now) {
		l.entries[key] = &windowEntry{count: 1, resetAt: now.Add(window)}
		return true, 0
	}

	if entry.count >= maxRequests {
		secs := int(math.Ceil(entry.resetAt.Sub(now).Seconds()))
		if secs < 1 {
			secs = 1
		}
		return false, secs
	}

	entry.count++
	return true, 0
}

func (l *Limiter) sweep(now time.Time) {
	for key, entry := range l.entries {
		if !entry.resetAt.After(now) {
			delete(l.entries, key)
		}
	}
}
