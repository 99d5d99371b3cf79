// Package lock provides a Redis-backed mutex keyed by user, serializing
// backup-code consumption so two concurrent logins cannot both spend the
// same code.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// ErrNotAcquired reports that the lock stayed held for the whole retry window.
var ErrNotAcquired = errors.New("lock: not acquired")

// Locker serializes a critical section per key.
type Locker interface {
	// WithLock runs fn while holding the lock for key. Acquisition retries
	// with backoff until the context is done or the retry window closes.
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

type uidGenerator interface {
	Generate() string
}

// Config tunes the Redis lock behavior.
type Config struct {
	// TTL bounds how long a crashed holder keeps the lock.
	TTL time.Duration
	// RetryInterval is the initial backoff between acquisition attempts.
	RetryInterval time.Duration
	// MaxWait bounds the total time spent acquiring.
	MaxWait time.Duration
}

func (c Config) normalized() Config {
	if c.TTL <= 0 {
		c.TTL = 10 * time.Second
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 50 * time.Millisecond
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 3 * time.Second
	}
	return c
}

// RedisLocker implements Locker with SET NX and a fencing token so only the
// holder can release.
type RedisLocker struct {
	client *redis.Client
	uid    uidGenerator
	cfg    Config
	prefix string
}

// NewRedisLocker constructs a RedisLocker.
func NewRedisLocker(client *redis.Client, uid uidGenerator, cfg Config) *RedisLocker {
	return &RedisLocker{
		client: client,
		uid:    uid,
		cfg:    cfg.normalized(),
		prefix: "lock:",
	}
}

// releaseScript deletes the key only when it still holds our token, so an
// expired lock reacquired by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// WithLock runs fn while holding the lock for key.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	fk := l.prefix + key
	token := l.uid.Generate()

	b := retry.NewFibonacci(l.cfg.RetryInterval)
	b = retry.WithMaxDuration(l.cfg.MaxWait, b)

	if err := retry.Do(ctx, b, func(ctx context.Context) error {
		acquired, err := l.client.SetNX(ctx, fk, token, l.cfg.TTL).Result()
		if err != nil {
			return err
		}
		if !acquired {
			return retry.RetryableError(ErrNotAcquired)
		}
		return nil
	}); err != nil {
		return err
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{fk}, token).Err()
	}()

	return fn(ctx)
}
