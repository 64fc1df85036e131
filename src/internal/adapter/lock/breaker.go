package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/sony/gobreaker"
)

var ErrLockUnavailable = errors.New("lock backend unavailable")

type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

type BreakerOptions struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

func DefaultBreakerOptions() BreakerOptions {
	return BreakerOptions{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

// Breaker fails fast while the wrapped backend keeps failing to hand out
// locks. Only acquisition failures count towards tripping it; errors returned
// by fn pass through untouched.
type Breaker struct {
	inner Locker
	cb    *gobreaker.CircuitBreaker
}

func NewBreaker(name string, inner Locker, opts BreakerOptions) *Breaker {
	if opts.ConsecutiveFailures == 0 {
		opts.ConsecutiveFailures = 1
	}

	return &Breaker{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: opts.HalfOpenRequests,
			Timeout:     opts.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= opts.ConsecutiveFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("lock breaker state changed", logger.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			},
		}),
	}
}

func (b *Breaker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilLockFn
	}

	var fnErr error
	ran := false
	_, err := b.cb.Execute(func() (any, error) {
		lockErr := b.inner.WithLock(ctx, key, func(ctx context.Context) error {
			ran = true
			fnErr = fn(ctx)
			return nil
		})
		return nil, lockErr
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}
	if err != nil {
		return err
	}
	if !ran {
		return ErrLockNotTaken
	}
	return fnErr
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}
