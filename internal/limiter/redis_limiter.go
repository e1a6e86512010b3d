package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("limiter redis unavailable")

// RedisLimiter is a fixed-window counter. The window key is created with its TTL
// and incremented in one MULTI, so a counter never outlives its window.
type RedisLimiter struct {
	redis  redis.UniversalClient
	prefix string
	max    int
	window time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, prefix string, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, prefix: prefix, max: max, window: window}
}

// Allow reports whether one more event for key fits into the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// SET k 0 EX window NX opens the window only if it is not open yet
		pipe.SetNX(ctx, k, 0, l.window)
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return incr.Val() <= int64(l.max), nil
}

// Reset drops the counter for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
