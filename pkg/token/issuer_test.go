package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authsafe/authsafe/pkg/client"
	idmerrors "github.com/authsafe/authsafe/pkg/errors"
	"github.com/authsafe/authsafe/pkg/keys"
	"github.com/authsafe/authsafe/pkg/login"
)

const testIssuerURL = "http://localhost:4000"

func newTestIssuer(t *testing.T, opts ...Option) (*Issuer, *keys.Secret) {
	t.Helper()
	registry := keys.NewInMemoryKeyRegistry()

	secret, err := keys.GenerateSecret("org-1")
	require.NoError(t, err)
	require.NoError(t, registry.AddSecret(context.Background(), secret))

	return NewIssuer(registry, testIssuerURL, opts...), secret
}

func testUser() *login.User {
	return &login.User{
		ID:             "user-1",
		OrganizationID: "org-1",
		Email:          "jane@example.com",
		EmailVerified:  true,
		Name:           "Jane Doe",
		Role: &login.Role{
			Key: "admin",
			Permissions: []login.Permission{
				{Key: "users:read"},
			},
		},
	}
}

func testClient() *client.Client {
	return &client.Client{
		ID:             "client-1",
		OrganizationID: "org-1",
		RedirectURI:    "http://localhost:8080/callback",
		GrantType:      client.GrantAuthorizationCode,
	}
}

func TestIssuer_GenerateIDToken(t *testing.T) {
	ctx := context.Background()

	t.Run("StandardClaims", func(t *testing.T) {
		issuer, secret := newTestIssuer(t)

		signed, err := issuer.GenerateIDToken(testUser(), testClient(), []string{ScopeOpenID}, "nonce-1", secret)
		require.NoError(t, err)

		claims, err := issuer.ValidateToken(ctx, signed)
		require.NoError(t, err)

		assert.Equal(t, testIssuerURL, claims["iss"])
		assert.Equal(t, "authsafe|user-1", claims["sub"])
		assert.Equal(t, "client-1", claims["aud"])
		assert.Equal(t, "org-1", claims["org_id"])
		assert.Equal(t, "nonce-1", claims["nonce"])

		iat := int64(claims["iat"].(float64))
		exp := int64(claims["exp"].(float64))
		assert.Equal(t, int64(time.Hour.Seconds()), exp-iat)

		// openid alone grants no profile claims
		assert.NotContains(t, claims, "name")
		assert.NotContains(t, claims, "email")
	})

	t.Run("ProfileScopeAddsIdentityClaims", func(t *testing.T) {
		issuer, secret := newTestIssuer(t)

		signed, err := issuer.GenerateIDToken(testUser(), testClient(), []string{ScopeOpenID, ScopeProfile}, "", secret)
		require.NoError(t, err)

		claims, err := issuer.ValidateToken(ctx, signed)
		require.NoError(t, err)

		assert.Equal(t, "Jane Doe", claims["name"])
		assert.Equal(t, "jane@example.com", claims["email"])
		assert.Equal(t, true, claims["email_verified"])
		assert.NotContains(t, claims, "nonce")
	})

	t.Run("KidHeaderNamesSigningKey", func(t *testing.T) {
		issuer, secret := newTestIssuer(t)

		signed, err := issuer.GenerateIDToken(testUser(), testClient(), []string{ScopeOpenID}, "", secret)
		require.NoError(t, err)

		unverified := jwt.MapClaims{}
		parsed, _, err := jwt.NewParser().ParseUnverified(signed, unverified)
		require.NoError(t, err)
		assert.Equal(t, secret.ID, parsed.Header["kid"])
		assert.Equal(t, "RS256", parsed.Header["alg"])
	})

	t.Run("NilSecret", func(t *testing.T) {
		issuer, _ := newTestIssuer(t)

		_, err := issuer.GenerateIDToken(testUser(), testClient(), []string{ScopeOpenID}, "", nil)
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTenantMisconfigured))
	})
}

func TestIssuer_GenerateAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("ScopeClaim", func(t *testing.T) {
		issuer, secret := newTestIssuer(t)

		signed, err := issuer.GenerateAccessToken(testUser(), testClient(), []string{ScopeOpenID, ScopeProfile}, secret)
		require.NoError(t, err)

		claims, err := issuer.ValidateToken(ctx, signed)
		require.NoError(t, err)

		assert.Equal(t, "openid profile", claims["scope"])
		assert.NotContains(t, claims, "role")
		assert.NotContains(t, claims, "permissions")
	})

	t.Run("RolesAndPermissionsScopes", func(t *testing.T) {
		issuer, secret := newTestIssuer(t)

		signed, err := issuer.GenerateAccessToken(testUser(), testClient(),
			[]string{ScopeOpenID, ScopeRoles, ScopePermissions}, secret)
		require.NoError(t, err)

		claims, err := issuer.ValidateToken(ctx, signed)
		require.NoError(t, err)

		assert.Equal(t, "admin", claims["role"])
		assert.Equal(t, []interface{}{"users:read"}, claims["permissions"])
	})
}

func TestIssuer_ValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("ExpiredToken", func(t *testing.T) {
		issuer, secret := newTestIssuer(t, WithTokenExpiration(-time.Minute))

		signed, err := issuer.GenerateIDToken(testUser(), testClient(), []string{ScopeOpenID}, "", secret)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(ctx, signed)
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenExpired))
	})

	t.Run("SignedByDifferentTenantKey", func(t *testing.T) {
		issuer, _ := newTestIssuer(t)

		// Rotate the tenant key after signing; the old signature no longer verifies
		stale, err := keys.GenerateSecret("org-1")
		require.NoError(t, err)

		signed, err := issuer.GenerateIDToken(testUser(), testClient(), []string{ScopeOpenID}, "", stale)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(ctx, signed)
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInvalid))
	})

	t.Run("UnknownOrganization", func(t *testing.T) {
		issuer, _ := newTestIssuer(t)

		other, err := keys.GenerateSecret("org-unknown")
		require.NoError(t, err)

		user := testUser()
		user.OrganizationID = "org-unknown"

		signed, err := issuer.GenerateIDToken(user, testClient(), []string{ScopeOpenID}, "", other)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(ctx, signed)
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInvalid))
	})

	t.Run("MalformedToken", func(t *testing.T) {
		issuer, _ := newTestIssuer(t)

		_, err := issuer.ValidateToken(ctx, "not.a.token")
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInvalid))
	})

	t.Run("RejectsUnsignedToken", func(t *testing.T) {
		issuer, _ := newTestIssuer(t)

		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"iss":    testIssuerURL,
			"sub":    "authsafe|user-1",
			"org_id": "org-1",
		})
		tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(ctx, tokenString)
		require.Error(t, err)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInvalid))
	})
}
