package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_ObtainAndRelease(t *testing.T) {
	mr, client := newRedis(t)
	locker := NewRedisLocker(client)
	ctx := context.Background()

	release, err := locker.Obtain(ctx, "order:product:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("procurement:lock:order:product:1"))

	release()
	assert.False(t, mr.Exists("procurement:lock:order:product:1"))
}

func TestRedisLocker_BusyKey(t *testing.T) {
	_, client := newRedis(t)
	locker := NewRedisLocker(client, WithRetry(5*time.Millisecond, 2))
	ctx := context.Background()

	release, err := locker.Obtain(ctx, "order:supplier:9")
	require.NoError(t, err)
	defer release()

	_, err = locker.Obtain(ctx, "order:supplier:9")
	assert.ErrorIs(t, err, shared.ErrLockNotObtained)

	other, err := locker.Obtain(ctx, "order:supplier:10")
	require.NoError(t, err)
	other()
}

func TestRedisLocker_WaitsForRelease(t *testing.T) {
	_, client := newRedis(t)
	locker := NewRedisLocker(client, WithRetry(5*time.Millisecond, 100))
	ctx := context.Background()

	release, err := locker.Obtain(ctx, "order:service:3")
	require.NoError(t, err)
	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	second, err := locker.Obtain(ctx, "order:service:3")
	require.NoError(t, err)
	second()
}

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Obtain(ctx, "order:product:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.slots)
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalLocker()
	release, err := locker.Obtain(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Obtain(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	assert.Empty(t, locker.slots)
}
