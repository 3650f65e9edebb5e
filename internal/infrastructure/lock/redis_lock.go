// Package lock serializes transitions per order across processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	apptrade "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL     = 30 * time.Second
	defaultBackoff = 50 * time.Millisecond
	defaultRetries = 40
	keyPrefix      = "procurement:lock:"
)

var _ apptrade.Locker = (*RedisLocker)(nil)

// RedisLocker hands out redislock leases keyed by order
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	retries int
	logger  *zap.Logger
}

// RedisLockerOption configures a RedisLocker
type RedisLockerOption func(*RedisLocker)

// WithTTL sets how long a lease lives if it is never released
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetry sets the linear backoff and retry count used while waiting for a busy key
func WithRetry(backoff time.Duration, retries int) RedisLockerOption {
	return func(l *RedisLocker) {
		l.backoff = backoff
		l.retries = retries
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) RedisLockerOption {
	return func(l *RedisLocker) {
		l.logger = logger
	}
}

// NewRedisLocker creates a locker on an existing redis client
func NewRedisLocker(client redis.UniversalClient, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		client:  redislock.New(client),
		ttl:     defaultTTL,
		backoff: defaultBackoff,
		retries: defaultRetries,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Obtain blocks until key is free or retries run out. The returned func releases the lease.
func (l *RedisLocker) Obtain(ctx context.Context, key string) (func(), error) {
	lease, err := l.client.Obtain(ctx, keyPrefix+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func() {
		// release must survive a cancelled request context
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lease.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("release lock failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
