package ratelimiter

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	"github.com/yanqian/projecthub/pkg/util"
)

// allowScript increments the window counter and arms its expiry in one round trip.
// It returns {count, pttl_ms}.
var allowScript = valkey.NewLuaScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// ValkeyLimiter shares attempt windows across processes through Valkey.
type ValkeyLimiter struct {
	client valkey.Client
	cfg    ratelimit.Config
	prefix string
	now    util.Clock
}

// NewValkeyLimiter constructs a limiter storing counters under prefix.
func NewValkeyLimiter(client valkey.Client, cfg ratelimit.Config, prefix string) *ValkeyLimiter {
	if prefix == "" {
		prefix = "ratelimit:auth"
	}
	return &ValkeyLimiter{client: client, cfg: cfg.WithDefaults(), prefix: prefix, now: util.NowUTC}
}

// Allow counts one attempt for key.
func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	if key == "" {
		return ratelimit.Decision{}, ratelimit.ErrUnavailable(ratelimit.ErrEmptyKey)
	}
	windowMS := strconv.FormatInt(l.cfg.Window.Milliseconds(), 10)
	values, err := allowScript.Exec(ctx, l.client, []string{l.key(key)}, []string{windowMS}).AsIntSlice()
	if err != nil {
		return ratelimit.Decision{}, ratelimit.ErrUnavailable(err)
	}
	if len(values) != 2 {
		return ratelimit.Decision{}, ratelimit.ErrUnavailable(errors.New("unexpected script reply"))
	}
	now := l.now()
	resetAt := now.Add(time.Duration(values[1]) * time.Millisecond)
	return ratelimit.Evaluate(l.cfg, int(values[0]), resetAt, now)
}

func (l *ValkeyLimiter) key(clientKey string) string {
	return l.prefix + ":" + clientKey
}

var _ ratelimit.Limiter = (*ValkeyLimiter)(nil)
