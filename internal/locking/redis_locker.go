package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrNotObtained = errors.New("could not obtain stock lock")

// RedisLocker holds stock keys across every API instance sharing one Redis.
type RedisLocker struct {
	client *redislock.Client
	logger *zap.Logger
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(rdb *redis.Client, logger *zap.Logger, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		logger: logger,
		ttl:    ttl,
		wait:   wait,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	options := &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(50 * time.Millisecond),
	}

	locks := make([]*redislock.Lock, 0, len(keys))
	for _, key := range uniqueSorted(keys) {
		lock, err := l.client.Obtain(waitCtx, "lock:"+key, l.ttl, options)
		if err != nil {
			l.releaseAll(locks)
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				l.logger.Warn("Could not obtain stock lock", zap.String("key", key), zap.Error(err))
				return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
			}
			return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
		}
		locks = append(locks, lock)
	}

	return func() { l.releaseAll(locks) }, nil
}

func (l *RedisLocker) releaseAll(locks []*redislock.Lock) {
	for i := len(locks) - 1; i >= 0; i-- {
		// The request context may already be cancelled at this point.
		if err := locks[i].Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release stock lock", zap.String("key", locks[i].Key()), zap.Error(err))
		}
	}
}
