package authcode

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), server
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		store, _ := newRedisStore(t)
		code := newTestCode("abc", time.Now().Add(10*time.Minute))

		require.NoError(t, store.Create(ctx, code))

		got, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, code.ClientID, got.ClientID)
		assert.Equal(t, code.UserID, got.UserID)
		assert.Equal(t, code.RedirectURI, got.RedirectURI)
		assert.Equal(t, code.Scopes, got.Scopes)
		assert.Equal(t, code.Nonce, got.Nonce)
	})

	t.Run("CreateRejectsDuplicate", func(t *testing.T) {
		store, _ := newRedisStore(t)
		require.NoError(t, store.Create(ctx, newTestCode("abc", time.Now().Add(10*time.Minute))))

		err := store.Create(ctx, newTestCode("abc", time.Now().Add(10*time.Minute)))
		assert.Error(t, err)
	})

	t.Run("CreateRejectsExpired", func(t *testing.T) {
		store, _ := newRedisStore(t)

		err := store.Create(ctx, newTestCode("abc", time.Now().Add(-time.Minute)))
		assert.Error(t, err)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store, _ := newRedisStore(t)

		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteIsAtMostOnce", func(t *testing.T) {
		store, _ := newRedisStore(t)
		require.NoError(t, store.Create(ctx, newTestCode("abc", time.Now().Add(10*time.Minute))))

		require.NoError(t, store.Delete(ctx, "abc"))
		assert.ErrorIs(t, store.Delete(ctx, "abc"), ErrNotFound)
	})

	t.Run("EntryExpiresWithTTL", func(t *testing.T) {
		store, server := newRedisStore(t)
		require.NoError(t, store.Create(ctx, newTestCode("abc", time.Now().Add(10*time.Minute))))

		server.FastForward(11 * time.Minute)

		_, err := store.Get(ctx, "abc")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("KeysAreNamespaced", func(t *testing.T) {
		store, server := newRedisStore(t)
		require.NoError(t, store.Create(ctx, newTestCode("abc", time.Now().Add(10*time.Minute))))

		assert.True(t, server.Exists("authorization_code:abc"))
	})
}
