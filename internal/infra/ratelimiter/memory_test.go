package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemoryLimiter(cfg ratelimit.Config) (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(cfg)
	l.now = clock.Now
	return l, clock
}

func TestMemoryLimiter_BlocksSixthAttempt(t *testing.T) {
	l, clock := newTestMemoryLimiter(ratelimit.Config{})
	ctx := context.Background()

	for i := 0; i < ratelimit.DefaultMaxAttempts; i++ {
		decision, err := l.Allow(ctx, "auth:10.0.0.1")
		require.NoError(t, err, "attempt %d", i+1)
		require.True(t, decision.Allowed)
		require.Equal(t, ratelimit.DefaultMaxAttempts-i-1, decision.Remaining)
	}

	clock.Advance(time.Minute)
	decision, err := l.Allow(ctx, "auth:10.0.0.1")
	require.True(t, ratelimit.IsThrottled(err))
	require.False(t, decision.Allowed)
	require.Equal(t, 14*time.Minute, decision.RetryAfter)

	other, err := l.Allow(ctx, "auth:10.0.0.2")
	require.NoError(t, err)
	require.True(t, other.Allowed)
}

func TestMemoryLimiter_WindowReset(t *testing.T) {
	l, clock := newTestMemoryLimiter(ratelimit.Config{MaxAttempts: 2, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := l.Allow(ctx, "k")
		require.NoError(t, err)
	}
	_, err := l.Allow(ctx, "k")
	require.True(t, ratelimit.IsThrottled(err))

	clock.Advance(time.Minute)
	decision, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 1, decision.Remaining)
}

func TestMemoryLimiter_RejectedAttemptsDoNotExtendWindow(t *testing.T) {
	l, clock := newTestMemoryLimiter(ratelimit.Config{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	_, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		clock.Advance(5 * time.Second)
		_, err = l.Allow(ctx, "k")
		require.True(t, ratelimit.IsThrottled(err))
	}

	clock.Advance(10 * time.Second)
	_, err = l.Allow(ctx, "k")
	require.NoError(t, err)
}

func TestMemoryLimiter_ConcurrentAttempts(t *testing.T) {
	const attempts = 200
	l, _ := newTestMemoryLimiter(ratelimit.Config{MaxAttempts: 50, Window: time.Hour})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Allow(ctx, "shared"); err == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 50, allowed)
}

func TestMemoryLimiter_EmptyKey(t *testing.T) {
	l, _ := newTestMemoryLimiter(ratelimit.Config{})
	_, err := l.Allow(context.Background(), "")
	require.True(t, apperrors.IsCode(err, ratelimit.CodeUnavailable))
	require.ErrorIs(t, err, ratelimit.ErrEmptyKey)
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	l, clock := newTestMemoryLimiter(ratelimit.Config{Window: time.Minute})
	ctx := context.Background()

	_, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	_, err = l.Allow(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, 2, l.size())

	clock.Advance(30 * time.Second)
	require.Equal(t, 1, l.Sweep())
	require.Equal(t, 1, l.size())

	clock.Advance(30 * time.Second)
	require.Equal(t, 1, l.Sweep())
	require.Zero(t, l.size())
}
