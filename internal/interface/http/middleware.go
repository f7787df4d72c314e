package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	"github.com/yanqian/projecthub/pkg/metrics"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = http.StatusText(httpErr.Status)
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// rateLimitMiddleware bounds credential attempts per client IP. Register and login share
// one key so alternating between them does not double the budget.
func rateLimitMiddleware(limiter ratelimit.Limiter, failOpen bool, m *metrics.Auth, logger *slog.Logger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		decision, err := limiter.Allow(c.Request.Context(), "auth:"+ip)
		if err == nil {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			setResetHeader(c, decision)
			c.Next()
			return
		}
		if ratelimit.IsThrottled(err) {
			setResetHeader(c, decision)
			m.ObserveRateLimited(c.FullPath())
			logger.Warn("auth rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(decision)))
			abortWithError(c, fromDomainError(err))
			return
		}
		if failOpen {
			logger.Warn("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}
		abortWithError(c, fromDomainError(err))
	}
}

func setResetHeader(c *gin.Context, decision ratelimit.Decision) {
	if decision.ResetAt.IsZero() {
		return
	}
	c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
}

func retryAfterSeconds(decision ratelimit.Decision) int {
	seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
