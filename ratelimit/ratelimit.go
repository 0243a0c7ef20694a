// Package ratelimit guards the login endpoint against credential
// brute-forcing. The limiter is an interface so a multi-instance
// deployment can point it at Redis instead of process memory.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	// Allow records one attempt for key and reports whether it is still
	// under the window's limit.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the window for key, typically after a successful login.
	Reset(ctx context.Context, key string) error
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. State
// does not survive restarts and is not shared across instances; fine for
// a single-instance deployment.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration

	now func() time.Time
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
	go l.sweep()
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true, nil
	}

	if w.count >= l.limit {
		return false, nil
	}

	w.count++
	return true, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// sweep drops expired windows so idle keys don't accumulate forever.
func (l *MemoryLimiter) sweep() {
	for range time.Tick(time.Minute) {
		l.mu.Lock()
		now := l.now()
		for key, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}
