package stocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	custom_error "stockroom/pkg/errors"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Locker serialises read-modify-write cycles on one item. The returned
// function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(context.Context) error, error)
}

// NoopLocker is the default: stock adjustments are not serialised.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

var ErrLockNotObtained = errors.New("stock lock is held by another adjustment")

type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(ttl/(50*time.Millisecond))),
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, ErrLockNotObtained)
	}
	if err != nil {
		return nil, custom_error.NewStoreUnavailable("obtain lock "+key, err)
	}

	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

func lockKey(itemID string) string {
	return "stock:" + itemID
}
