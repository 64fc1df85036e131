package lock

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewRedis(client, DefaultRedisOptions())
	require.NoError(t, err)
	return l, mr
}

func TestRedisWithLockRunsFunctionAndReleases(t *testing.T) {
	l, mr := newTestRedis(t)

	err := l.WithLock(context.Background(), "ledger:t1:acc-1", func(context.Context) error {
		assert.True(t, mr.Exists("lock:ledger:t1:acc-1"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("lock:ledger:t1:acc-1"))
}

func TestRedisWithLockPropagatesFunctionError(t *testing.T) {
	l, _ := newTestRedis(t)
	boom := errors.New("boom")

	err := l.WithLock(context.Background(), "acc", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRedisWithLockFailsWhenHeldElsewhere(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewRedis(client, RedisOptions{Expiry: DefaultRedisOptions().Expiry, Tries: 1, RetryDelay: 0})
	require.NoError(t, err)

	require.NoError(t, mr.Set("lock:acc", "someone-else"))

	err = l.WithLock(context.Background(), "acc", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrLockNotTaken)
}

func TestNewRedisValidatesArguments(t *testing.T) {
	_, err := NewRedis(nil, DefaultRedisOptions())
	assert.ErrorIs(t, err, ErrNilClient)

	client := goredislib.NewClient(&goredislib.Options{Addr: "localhost:0"})
	defer client.Close()
	_, err = NewRedis(client, RedisOptions{})
	assert.Error(t, err)
}
