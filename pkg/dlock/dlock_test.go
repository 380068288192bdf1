package dlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMutex(t *testing.T) {
	ctx := context.Background()

	t.Run("AcquireAndRelease", func(t *testing.T) {
		mutex := NewInMemoryMutex()

		lock, err := mutex.Acquire(ctx, "locks:authorization_code:abc", 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "locks:authorization_code:abc", lock.Resource())

		require.NoError(t, mutex.Release(ctx, lock))

		// Released resource is immediately acquirable again
		lock2, err := mutex.Acquire(ctx, "locks:authorization_code:abc", 30*time.Second)
		require.NoError(t, err)
		require.NoError(t, mutex.Release(ctx, lock2))
	})

	t.Run("ContendedResource", func(t *testing.T) {
		mutex := NewInMemoryMutex()

		lock, err := mutex.Acquire(ctx, "res", 30*time.Second)
		require.NoError(t, err)
		defer mutex.Release(ctx, lock)

		_, err = mutex.Acquire(ctx, "res", 30*time.Second)
		assert.ErrorIs(t, err, ErrContended)
	})

	t.Run("ExpiredLockIsReacquirable", func(t *testing.T) {
		mutex := NewInMemoryMutex()

		_, err := mutex.Acquire(ctx, "res", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		lock, err := mutex.Acquire(ctx, "res", 30*time.Second)
		require.NoError(t, err)
		require.NoError(t, mutex.Release(ctx, lock))
	})

	t.Run("ReleaseTwice", func(t *testing.T) {
		mutex := NewInMemoryMutex()

		lock, err := mutex.Acquire(ctx, "res", 30*time.Second)
		require.NoError(t, err)
		require.NoError(t, mutex.Release(ctx, lock))

		assert.ErrorIs(t, mutex.Release(ctx, lock), ErrNotHeld)
	})

	t.Run("Extend", func(t *testing.T) {
		mutex := NewInMemoryMutex()

		lock, err := mutex.Acquire(ctx, "res", time.Second)
		require.NoError(t, err)

		require.NoError(t, mutex.Extend(ctx, lock))
		require.NoError(t, mutex.Release(ctx, lock))
	})

	t.Run("OnlyOneWinnerUnderConcurrency", func(t *testing.T) {
		mutex := NewInMemoryMutex()

		// Short deadline so losers stop retrying quickly
		deadlineCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()

		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				lock, err := mutex.Acquire(deadlineCtx, "shared", 30*time.Second)
				if err != nil {
					return
				}
				mu.Lock()
				winners++
				mu.Unlock()
				// Hold the lock until every goroutine has given up
				<-deadlineCtx.Done()
				mutex.Release(ctx, lock)
			}()
		}

		wg.Wait()
		assert.Equal(t, 1, winners)
	})
}

func TestRedsyncMutex(t *testing.T) {
	ctx := context.Background()

	newMutex := func(t *testing.T, opts ...Option) *RedsyncMutex {
		t.Helper()
		server := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() { client.Close() })
		return NewRedsyncMutex(client, opts...)
	}

	t.Run("AcquireAndRelease", func(t *testing.T) {
		mutex := newMutex(t)

		lock, err := mutex.Acquire(ctx, "locks:authorization_code:abc", 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "locks:authorization_code:abc", lock.Resource())

		require.NoError(t, mutex.Release(ctx, lock))
	})

	t.Run("ContendedResource", func(t *testing.T) {
		mutex := newMutex(t, WithTries(2), WithRetryDelay(10*time.Millisecond))

		lock, err := mutex.Acquire(ctx, "res", 30*time.Second)
		require.NoError(t, err)
		defer mutex.Release(ctx, lock)

		_, err = mutex.Acquire(ctx, "res", 30*time.Second)
		assert.ErrorIs(t, err, ErrContended)
	})

	t.Run("ReacquireAfterRelease", func(t *testing.T) {
		mutex := newMutex(t, WithTries(2), WithRetryDelay(10*time.Millisecond))

		lock, err := mutex.Acquire(ctx, "res", 30*time.Second)
		require.NoError(t, err)
		require.NoError(t, mutex.Release(ctx, lock))

		lock2, err := mutex.Acquire(ctx, "res", 30*time.Second)
		require.NoError(t, err)
		require.NoError(t, mutex.Release(ctx, lock2))
	})

	t.Run("Extend", func(t *testing.T) {
		mutex := newMutex(t)

		lock, err := mutex.Acquire(ctx, "res", 30*time.Second)
		require.NoError(t, err)

		require.NoError(t, mutex.Extend(ctx, lock))
		require.NoError(t, mutex.Release(ctx, lock))
	})
}
