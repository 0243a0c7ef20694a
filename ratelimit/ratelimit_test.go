package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, period time.Duration) (*MemoryLimiter, *time.Time) {
	now := time.Now()
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     func() time.Time { return now },
	}
	return l, &now
}

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(3, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "user@example.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, err := l.Allow(ctx, "user@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 15*time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a@example.com")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a@example.com")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b@example.com")
	assert.True(t, ok)
}

func TestMemoryLimiterWindowExpires(t *testing.T) {
	l, now := newTestLimiter(1, 15*time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "user@example.com")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "user@example.com")
	assert.False(t, ok)

	*now = now.Add(16 * time.Minute)

	ok, _ = l.Allow(ctx, "user@example.com")
	assert.True(t, ok)
}

func TestMemoryLimiterReset(t *testing.T) {
	l, _ := newTestLimiter(1, 15*time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "user@example.com")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "user@example.com")
	assert.False(t, ok)

	require.NoError(t, l.Reset(ctx, "user@example.com"))

	ok, _ = l.Allow(ctx, "user@example.com")
	assert.True(t, ok)
}
