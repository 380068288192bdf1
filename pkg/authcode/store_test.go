package authcode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCode(code string, expiresAt time.Time) *AuthorizationCode {
	return &AuthorizationCode{
		Code:           code,
		ClientID:       "client-1",
		UserID:         "user-1",
		OrganizationID: "org-1",
		RedirectURI:    "http://localhost:8080/callback",
		Scopes:         []string{"openid", "profile"},
		State:          "xyz",
		Nonce:          "n-0S6_WzA2Mj",
		ExpiresAt:      expiresAt,
		CreatedAt:      time.Now(),
	}
}

func TestGenerateCode(t *testing.T) {
	first, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, first, 64) // 32 random bytes, hex encoded

	second, err := GenerateCode()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestAuthorizationCode_IsExpired(t *testing.T) {
	now := time.Now()
	code := newTestCode("abc", now.Add(10*time.Minute))

	assert.False(t, code.IsExpired(now))
	assert.True(t, code.IsExpired(now.Add(11*time.Minute)))
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		store := NewInMemoryStore()
		code := newTestCode("abc", time.Now().Add(10*time.Minute))

		require.NoError(t, store.Create(ctx, code))

		got, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, code.ClientID, got.ClientID)
		assert.Equal(t, code.UserID, got.UserID)
		assert.Equal(t, code.Scopes, got.Scopes)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		store := NewInMemoryStore()
		require.NoError(t, store.Create(ctx, newTestCode("abc", time.Now().Add(10*time.Minute))))

		got, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		got.UserID = "mutated"

		again, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "user-1", again.UserID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := NewInMemoryStore()

		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteIsAtMostOnce", func(t *testing.T) {
		store := NewInMemoryStore()
		require.NoError(t, store.Create(ctx, newTestCode("abc", time.Now().Add(10*time.Minute))))

		require.NoError(t, store.Delete(ctx, "abc"))
		assert.ErrorIs(t, store.Delete(ctx, "abc"), ErrNotFound)

		_, err := store.Get(ctx, "abc")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PruneExpired", func(t *testing.T) {
		store := NewInMemoryStore()
		now := time.Now()
		require.NoError(t, store.Create(ctx, newTestCode("live", now.Add(10*time.Minute))))
		require.NoError(t, store.Create(ctx, newTestCode("dead", now.Add(time.Minute))))

		pruned := store.PruneExpired(now.Add(2 * time.Minute))
		assert.Equal(t, 1, pruned)

		_, err := store.Get(ctx, "dead")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Get(ctx, "live")
		assert.NoError(t, err)
	})
}
