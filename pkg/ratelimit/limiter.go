// Package ratelimit implements per-client admission control over a shared
// Redis store. It is a quick leaky-bucket approximation: each request drops
// an expiring marker key and counts the live markers for its client; two
// concurrent requests can both pass before either marker is visible, which
// is an accepted tradeoff over an exact token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides admit/deny per client address against a Redis store.
type Limiter struct {
	client *redis.Client
	max    int
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Limiter allowing up to max live markers per client within
// the ttl window.
func New(client *redis.Client, max int, ttl time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{client: client, max: max, ttl: ttl, logger: logger, now: time.Now}
}

// WithClock overrides the marker timestamp source. Test seam.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Admit records this attempt and reports whether the client is within its
// rate limit. The marker write happens on every call, denied or not.
// Store errors fail the admission check rather than falling open.
func (l *Limiter) Admit(ctx context.Context, addr string) (bool, error) {
	key := fmt.Sprintf("%s_%d", addr, l.now().UnixMicro())
	if err := l.client.Set(ctx, key, 1, l.ttl).Err(); err != nil {
		return false, err
	}

	// Only non-expired markers are visible; Redis enforces the window.
	keys, err := l.client.Keys(ctx, fmt.Sprintf("%s_*", addr)).Result()
	if err != nil {
		return false, err
	}

	if len(keys) > l.max {
		l.logger.Warn("rate limit exceeded",
			zap.String("addr", addr),
			zap.Int("live_markers", len(keys)),
			zap.Int("max", l.max),
		)
		return false, nil
	}
	return true, nil
}
