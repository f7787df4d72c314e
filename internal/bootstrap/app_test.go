package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	"github.com/yanqian/projecthub/internal/infra/config"
)

type recordingLimiter struct {
	started atomic.Bool
}

func (l *recordingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: true}, nil
}

func (l *recordingLimiter) StartCleanup(context.Context, time.Duration) {
	l.started.Store(true)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := &config.Config{
		HTTP:      config.HTTPConfig{Address: addr},
		RateLimit: config.RateLimitConfig{CleanupInterval: time.Minute},
	}
	server := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	limiter := &recordingLimiter{}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, limiter)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)
	require.True(t, limiter.started.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
