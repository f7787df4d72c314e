package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	"github.com/yanqian/projecthub/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// A nil limiter disables credential throttling.
func NewRouter(cfg *config.Config, handler *Handler, verifier TokenVerifier, limiter ratelimit.Limiter, gatherer prometheus.Gatherer) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// Forwarding headers are honored only from listed proxies; otherwise ClientIP is the socket peer.
	if err := router.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		handler.logger.Error("invalid trusted proxies, ignoring forwarding headers", "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	requireAuth := authMiddleware(verifier, handler.metrics)
	throttle := rateLimitMiddleware(limiter, cfg.RateLimit.FailOpen, handler.metrics, handler.logger)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", throttle, handler.Register)
		authGroup.POST("/login", throttle, handler.Login)
		authGroup.GET("/profile", requireAuth, handler.Profile)
		authGroup.POST("/refresh", requireAuth, handler.Refresh)
		authGroup.POST("/logout", requireAuth, handler.Logout)
		authGroup.GET("/session", optionalAuthMiddleware(verifier), handler.Session)

		hours := api.Group("/logginghours", requireAuth)
		hours.GET("", handler.ListEntries)
		hours.POST("", handler.CreateEntry)
		hours.GET("/:id", handler.GetEntry)
		hours.PUT("/:id", handler.UpdateEntry)
		hours.DELETE("/:id", handler.DeleteEntry)

		api.GET("/users/:userId/logginghours", requireAuth, handler.ListUserEntries)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
