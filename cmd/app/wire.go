//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/projecthub/internal/bootstrap"
	"github.com/yanqian/projecthub/internal/domain/auth"
	"github.com/yanqian/projecthub/internal/domain/timelog"
	"github.com/yanqian/projecthub/internal/infra/config"
	httpiface "github.com/yanqian/projecthub/internal/interface/http"
	"github.com/yanqian/projecthub/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideTokenCodec,
		providePasswordHasher,
		provideRegistry,
		provideAuthMetrics,
		providePostgresPool,
		provideUserRepository,
		provideTimelogRepository,
		provideRateLimiter,
		auth.NewService,
		timelog.NewService,
		wire.Bind(new(httpiface.TokenVerifier), new(*auth.TokenCodec)),
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
