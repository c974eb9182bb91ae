package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 2 * time.Hour

// Lock coordinates exclusive cron runs across instances.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Extend(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfValue(ctx context.Context, key, value string) (bool, error)
	ExpireIfValue(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// RedisLock holds a TTL-bound key whose value names the owning instance.
// A worker that dies mid-cycle frees the lock once the TTL lapses.
type RedisLock struct {
	client   redisStore
	key      string
	ttl      time.Duration
	instance string
	token    string
}

// NewRedisLock constructs a Redis-backed lock. instance prefixes the owner
// token so operators can see which process holds the key.
func NewRedisLock(client redisStore, key, instance string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if instance == "" {
		instance = "unknown"
	}
	return &RedisLock{client: client, key: key, ttl: ttl, instance: instance}, nil
}

// Owner returns the token written to Redis, or "" when the lock is not held.
func (l *RedisLock) Owner() string {
	return l.token
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := l.instance + ":" + uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Extend pushes the expiry out by a full TTL. It reports false once the lock
// has expired and been claimed elsewhere, after which this holder is cleared.
func (l *RedisLock) Extend(ctx context.Context) (bool, error) {
	if l.token == "" {
		return false, nil
	}
	ok, err := l.client.ExpireIfValue(ctx, l.key, l.token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("extend %s: %w", l.key, err)
	}
	if !ok {
		l.token = ""
	}
	return ok, nil
}

// Release frees the lock if this holder still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	if _, err := l.client.DelIfValue(ctx, l.key, l.token); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	l.token = ""
	return nil
}
