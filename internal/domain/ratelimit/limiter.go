// Package ratelimit bounds credential attempts per client key within a fixed window.
package ratelimit

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

// Error codes surfaced by limiters.
const (
	CodeTooManyAttempts = "too_many_attempts"
	CodeUnavailable     = "rate_limit_unavailable"
)

// Defaults applied when Config leaves a field unset.
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Config sizes the attempt window.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// WithDefaults fills zero fields with the package defaults.
func (c Config) WithDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

// Decision describes the outcome of one attempt.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Limiter counts attempts per key. Allow returns a too_many_attempts error when the key is exhausted.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Evaluate turns the post-increment count of a window into a Decision.
// count includes the current attempt; resetAt is when the window closes.
func Evaluate(cfg Config, count int, resetAt, now time.Time) (Decision, error) {
	decision := Decision{
		Limit:   cfg.MaxAttempts,
		ResetAt: resetAt,
	}
	if count <= cfg.MaxAttempts {
		decision.Allowed = true
		decision.Remaining = cfg.MaxAttempts - count
		return decision, nil
	}
	decision.RetryAfter = resetAt.Sub(now)
	if decision.RetryAfter < 0 {
		decision.RetryAfter = 0
	}
	return decision, ErrTooManyAttempts()
}

// ErrTooManyAttempts builds the error returned for an exhausted key.
func ErrTooManyAttempts() error {
	return apperrors.Wrap(CodeTooManyAttempts, "too many authentication attempts, please try again later", nil)
}

// ErrUnavailable wraps a backing store failure.
func ErrUnavailable(err error) error {
	return apperrors.Wrap(CodeUnavailable, "rate limiter unavailable", err)
}

// IsThrottled reports whether err is a too_many_attempts rejection.
func IsThrottled(err error) bool {
	return apperrors.IsCode(err, CodeTooManyAttempts)
}

// ErrEmptyKey is returned for attempts without a client key.
var ErrEmptyKey = errors.New("rate limit key is empty")
