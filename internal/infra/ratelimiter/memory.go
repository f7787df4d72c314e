package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	"github.com/yanqian/projecthub/pkg/util"
)

const shardCount = 64

// MemoryLimiter keeps fixed attempt windows in process memory, one lock per shard.
type MemoryLimiter struct {
	cfg    ratelimit.Config
	shards [shardCount]shard
	now    util.Clock
}

type shard struct {
	mu      sync.Mutex
	windows map[string]window
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter constructs an in-process limiter.
func NewMemoryLimiter(cfg ratelimit.Config) *MemoryLimiter {
	l := &MemoryLimiter{cfg: cfg.WithDefaults(), now: util.NowUTC}
	for i := range l.shards {
		l.shards[i].windows = make(map[string]window)
	}
	return l
}

// Allow counts one attempt for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	if key == "" {
		return ratelimit.Decision{}, ratelimit.ErrUnavailable(ratelimit.ErrEmptyKey)
	}
	now := l.now()
	sh := l.shardFor(key)

	sh.mu.Lock()
	w, ok := sh.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = window{resetAt: now.Add(l.cfg.Window)}
	}
	count := w.count + 1
	// Rejected attempts are not stored so the counter stays bounded.
	if count <= l.cfg.MaxAttempts {
		w.count = count
		sh.windows[key] = w
	}
	sh.mu.Unlock()

	return ratelimit.Evaluate(l.cfg, count, w.resetAt, now)
}

// Sweep drops windows that have closed and returns how many were removed.
func (l *MemoryLimiter) Sweep() int {
	now := l.now()
	removed := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		for key, w := range sh.windows {
			if !now.Before(w.resetAt) {
				delete(sh.windows, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// StartCleanup sweeps on every tick until ctx is done.
func (l *MemoryLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.cfg.Window
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// size reports the number of tracked keys.
func (l *MemoryLimiter) size() int {
	total := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		total += len(sh.windows)
		sh.mu.Unlock()
	}
	return total
}

func (l *MemoryLimiter) shardFor(key string) *shard {
	return &l.shards[xxhash.Sum64String(key)%shardCount]
}

var _ ratelimit.Limiter = (*MemoryLimiter)(nil)
