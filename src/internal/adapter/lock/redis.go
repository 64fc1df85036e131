package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

var (
	ErrEmptyKey     = errors.New("lock key cannot be empty")
	ErrNilClient    = errors.New("redis client is nil")
	ErrLockNotHeld  = errors.New("lock was not held or already expired")
	ErrLockNotTaken = errors.New("lock could not be acquired")
)

// RedisOptions tunes the RedLock mutex. Expiry must exceed the longest phase.
type RedisOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:     10 * time.Second,
		Tries:      20,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Redis serializes work per key across service instances using RedLock.
type Redis struct {
	rs   *redsync.Redsync
	opts RedisOptions
}

func NewRedis(client goredislib.UniversalClient, opts RedisOptions) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if opts.Expiry <= 0 || opts.Tries < 1 || opts.RetryDelay < 0 {
		return nil, fmt.Errorf("invalid redis lock options: %+v", opts)
	}

	return &Redis{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}, nil
}

func (r *Redis) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilLockFn
	}
	if key == "" {
		return ErrEmptyKey
	}

	mutex := r.rs.NewMutex(
		"lock:"+key,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		logger.Error("redis lock acquire failed", err, logger.Fields{"key": key})
		return fmt.Errorf("%w: %v", ErrLockNotTaken, err)
	}

	fnErr := fn(ctx)

	// The posting is version-checked by the repository, so an expired lock
	// is logged rather than turned into a failure of committed work.
	if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil || !ok {
		if err == nil {
			err = ErrLockNotHeld
		}
		logger.Warn("redis lock release failed", logger.Fields{"key": key, "error": err.Error()})
	}

	return fnErr
}
