package login

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idmerrors "github.com/authsafe/authsafe/pkg/errors"
)

func TestArgon2Hasher(t *testing.T) {
	hasher := NewArgon2Hasher()

	t.Run("HashAndVerify", func(t *testing.T) {
		hash, err := hasher.Hash("pass123")
		require.NoError(t, err)
		assert.Contains(t, hash, "$argon2id$")

		ok, err := hasher.Verify("pass123", hash)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = hasher.Verify("wrong", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SaltedHashesDiffer", func(t *testing.T) {
		first, err := hasher.Hash("pass123")
		require.NoError(t, err)
		second, err := hasher.Hash("pass123")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("MalformedHash", func(t *testing.T) {
		_, err := hasher.Verify("pass123", "not-a-hash")
		assert.Error(t, err)
	})
}

func TestCredentialValidator_Validate(t *testing.T) {
	ctx := context.Background()
	hasher := NewArgon2Hasher()

	hash, err := hasher.Hash("pass123")
	require.NoError(t, err)

	repository := NewInMemoryUserRepository()
	require.NoError(t, repository.CreateUser(ctx, &User{
		ID:             "user-1",
		OrganizationID: "org-1",
		Email:          "jane@example.com",
		EmailVerified:  true,
		Name:           "Jane Doe",
		PasswordHash:   hash,
	}))

	validator := NewCredentialValidator(repository)

	t.Run("CorrectPassword", func(t *testing.T) {
		user, err := validator.Validate(ctx, "jane@example.com", "pass123", "org-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("EmailLookupIsCaseInsensitive", func(t *testing.T) {
		user, err := validator.Validate(ctx, "Jane@Example.COM", "pass123", "org-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := validator.Validate(ctx, "jane@example.com", "wrong", "org-1")
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAuthFailed))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := validator.Validate(ctx, "nobody@example.com", "pass123", "org-1")
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAuthFailed))
	})

	t.Run("WrongOrganization", func(t *testing.T) {
		_, err := validator.Validate(ctx, "jane@example.com", "pass123", "org-2")
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAuthFailed))
	})

	t.Run("UnknownUserAndWrongPasswordAreIndistinguishable", func(t *testing.T) {
		_, errUnknown := validator.Validate(ctx, "nobody@example.com", "pass123", "org-1")
		_, errWrong := validator.Validate(ctx, "jane@example.com", "wrong", "org-1")
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})
}

func TestUser_RoleProjection(t *testing.T) {
	user := &User{
		ID: "user-1",
		Role: &Role{
			Key: "admin",
			Permissions: []Permission{
				{Key: "users:read"},
				{Key: "users:write"},
			},
		},
	}

	assert.Equal(t, "admin", user.RoleKey())
	assert.Equal(t, []string{"users:read", "users:write"}, user.PermissionKeys())

	var roleless User
	assert.Empty(t, roleless.RoleKey())
	assert.Empty(t, roleless.PermissionKeys())
}
