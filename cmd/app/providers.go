package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/projecthub/internal/domain/auth"
	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	"github.com/yanqian/projecthub/internal/domain/timelog"
	"github.com/yanqian/projecthub/internal/infra/config"
	"github.com/yanqian/projecthub/internal/infra/ratelimiter"
	"github.com/yanqian/projecthub/internal/infra/timelogrepo"
	"github.com/yanqian/projecthub/internal/infra/userrepo"
	"github.com/yanqian/projecthub/pkg/metrics"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:       cfg.Auth.Secret,
		TokenTTL:     cfg.Auth.TokenTTL,
		Issuer:       cfg.Auth.Issuer,
		PasswordCost: cfg.Auth.PasswordCost,
	}
}

func provideTokenCodec(cfg auth.Config) (*auth.TokenCodec, error) {
	return auth.NewTokenCodec(auth.TokenConfig{
		Secret: cfg.Secret,
		TTL:    cfg.TokenTTL,
		Issuer: cfg.Issuer,
	})
}

func providePasswordHasher(cfg auth.Config) (*auth.PasswordHasher, error) {
	return auth.NewPasswordHasher(cfg.PasswordCost)
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func provideAuthMetrics(registry *prometheus.Registry) *metrics.Auth {
	return metrics.NewAuth(registry)
}

// providePostgresPool returns a nil pool when no DSN is configured or the database is
// unreachable; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil, noop
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideTimelogRepository(pool *pgxpool.Pool) timelog.Repository {
	if pool == nil {
		return timelogrepo.NewMemoryRepository()
	}
	return timelogrepo.NewPostgresRepository(pool)
}

// provideRateLimiter returns a nil Limiter when throttling is disabled. A valkey backend
// that cannot be reached falls back to the in-process limiter.
func provideRateLimiter(cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, func()) {
	noop := func() {}
	if !cfg.RateLimit.Enabled {
		logger.Warn("credential rate limiting disabled")
		return nil, noop
	}
	limits := ratelimit.Config{MaxAttempts: cfg.RateLimit.MaxAttempts, Window: cfg.RateLimit.Window}
	if cfg.RateLimit.Backend == config.BackendValkey {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory limiter", "error", err)
			return ratelimiter.NewMemoryLimiter(limits), noop
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory limiter", "error", err)
			return ratelimiter.NewMemoryLimiter(limits), noop
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory limiter", "error", err)
			client.Close()
			return ratelimiter.NewMemoryLimiter(limits), noop
		}
		logger.Info("valkey rate limiter enabled", "addr", cfg.RateLimit.Valkey.Addr)
		return ratelimiter.NewValkeyLimiter(client, limits, cfg.RateLimit.Valkey.Prefix), client.Close
	}
	return ratelimiter.NewMemoryLimiter(limits), noop
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.RateLimit.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.RateLimit.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.RateLimit.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
