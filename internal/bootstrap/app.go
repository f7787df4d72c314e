package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	"github.com/yanqian/projecthub/internal/infra/config"
)

// sweeper is implemented by limiters that keep windows in process memory.
type sweeper interface {
	StartCleanup(ctx context.Context, interval time.Duration)
}

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	limiter ratelimit.Limiter
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, limiter ratelimit.Limiter) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, limiter: limiter}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if s, ok := a.limiter.(sweeper); ok {
		s.StartCleanup(ctx, a.cfg.RateLimit.CleanupInterval)
		a.logger.Info("rate limiter sweeper started", "interval", a.cfg.RateLimit.CleanupInterval.String())
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
