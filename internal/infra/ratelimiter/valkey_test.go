package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

func newTestValkeyLimiter(t *testing.T, cfg ratelimit.Config) (*ValkeyLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return NewValkeyLimiter(client, cfg, "test"), mr
}

func TestValkeyLimiter_BlocksAfterLimit(t *testing.T) {
	l, mr := newTestValkeyLimiter(t, ratelimit.Config{MaxAttempts: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := l.Allow(ctx, "auth:10.0.0.1")
		require.NoError(t, err)
		require.Equal(t, 2-i, decision.Remaining)
	}
	decision, err := l.Allow(ctx, "auth:10.0.0.1")
	require.True(t, ratelimit.IsThrottled(err))
	require.False(t, decision.Allowed)
	require.Greater(t, decision.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, decision.RetryAfter, time.Minute)

	require.True(t, mr.Exists("test:auth:10.0.0.1"))
	require.Greater(t, mr.TTL("test:auth:10.0.0.1"), time.Duration(0))
}

func TestValkeyLimiter_WindowExpires(t *testing.T) {
	l, mr := newTestValkeyLimiter(t, ratelimit.Config{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	_, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	_, err = l.Allow(ctx, "k")
	require.True(t, ratelimit.IsThrottled(err))

	mr.FastForward(time.Minute + time.Second)
	_, err = l.Allow(ctx, "k")
	require.NoError(t, err)
}

func TestValkeyLimiter_StoreDown(t *testing.T) {
	l, mr := newTestValkeyLimiter(t, ratelimit.Config{})
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := l.Allow(ctx, "k")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, ratelimit.CodeUnavailable))
}
