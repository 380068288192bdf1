package token

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authsafe/authsafe/pkg/client"
	idmerrors "github.com/authsafe/authsafe/pkg/errors"
	"github.com/authsafe/authsafe/pkg/keys"
	"github.com/authsafe/authsafe/pkg/login"
)

// SubjectPrefix namespaces token subjects: sub = "authsafe|<userID>"
const SubjectPrefix = "authsafe|"

// Scope names gating which claims appear in issued tokens
const (
	ScopeOpenID      = "openid"
	ScopeProfile     = "profile"
	ScopeRoles       = "roles"
	ScopePermissions = "permissions"
)

// Issuer builds and signs ID and access tokens with per-tenant RSA keys,
// and verifies presented tokens against the owning tenant's public key.
type Issuer struct {
	registry        keys.KeyRegistry
	issuer          string
	tokenExpiration time.Duration
}

// Option is a function that configures an Issuer
type Option func(*Issuer)

// WithTokenExpiration sets the token lifetime (ID and access tokens share it)
func WithTokenExpiration(duration time.Duration) Option {
	return func(i *Issuer) {
		i.tokenExpiration = duration
	}
}

// NewIssuer creates a token issuer. The issuer string becomes the tokens'
// iss claim; the registry resolves tenant public keys during validation.
func NewIssuer(registry keys.KeyRegistry, issuer string, opts ...Option) *Issuer {
	tokenIssuer := &Issuer{
		registry:        registry,
		issuer:          issuer,
		tokenExpiration: time.Hour,
	}

	for _, opt := range opts {
		opt(tokenIssuer)
	}

	return tokenIssuer
}

// TokenExpiration returns the configured token lifetime
func (i *Issuer) TokenExpiration() time.Duration {
	return i.tokenExpiration
}

// GenerateIDToken builds and signs the OIDC identity token. Scope "profile"
// adds name, email, and email_verified.
func (i *Issuer) GenerateIDToken(user *login.User, cl *client.Client, scopes []string, nonce string, secret *keys.Secret) (string, error) {
	claims := i.standardClaims(user, cl)
	if nonce != "" {
		claims["nonce"] = nonce
	}

	if slices.Contains(scopes, ScopeProfile) {
		claims["name"] = user.Name
		claims["email"] = user.Email
		claims["email_verified"] = user.EmailVerified
	}

	return i.sign(claims, secret)
}

// GenerateAccessToken builds and signs a self-contained bearer token carrying
// the granted scope. Scopes "roles" and "permissions" project the user's role
// key and permission keys.
func (i *Issuer) GenerateAccessToken(user *login.User, cl *client.Client, scopes []string, secret *keys.Secret) (string, error) {
	claims := i.standardClaims(user, cl)
	claims["scope"] = strings.Join(scopes, " ")

	if slices.Contains(scopes, ScopeRoles) {
		claims["role"] = user.RoleKey()
	}

	if slices.Contains(scopes, ScopePermissions) {
		claims["permissions"] = user.PermissionKeys()
	}

	return i.sign(claims, secret)
}

// ValidateToken verifies a presented token: the unverified org_id claim
// selects the tenant public key, then the RS256 signature and expiry are
// checked against it. Expired tokens fail with a distinct TOKEN_EXPIRED code.
func (i *Issuer) ValidateToken(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	organizationID, err := i.extractOrganizationID(tokenString)
	if err != nil {
		return nil, err
	}

	secret, err := i.registry.GetByOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, keys.ErrSecretNotFound) {
			return nil, idmerrors.New(idmerrors.ErrCodeTokenInvalid, "token's organization is not valid")
		}
		return nil, idmerrors.Internal(err, "failed to load organization signing key")
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret.PublicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, idmerrors.New(idmerrors.ErrCodeTokenExpired, "expired token")
		}
		return nil, idmerrors.Wrap(err, idmerrors.ErrCodeTokenInvalid, "failed to verify token")
	}

	return claims, nil
}

// standardClaims builds the claim set shared by ID and access tokens.
// All time fields are Unix seconds; expiry is issued-at plus exactly the
// configured lifetime.
func (i *Issuer) standardClaims(user *login.User, cl *client.Client) jwt.MapClaims {
	now := time.Now().UTC()
	return jwt.MapClaims{
		"iss":    i.issuer,
		"sub":    SubjectPrefix + user.ID,
		"aud":    cl.ID,
		"iat":    now.Unix(),
		"exp":    now.Add(i.tokenExpiration).Unix(),
		"org_id": user.OrganizationID,
	}
}

func (i *Issuer) sign(claims jwt.MapClaims, secret *keys.Secret) (string, error) {
	if secret == nil || secret.PrivateKey == nil {
		return "", idmerrors.New(idmerrors.ErrCodeTenantMisconfigured, "organization has no signing key")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = secret.ID

	signed, err := token.SignedString(secret.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// extractOrganizationID decodes the token without verification to read the
// org_id claim that selects the verification key
func (i *Issuer) extractOrganizationID(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return "", idmerrors.Wrap(err, idmerrors.ErrCodeTokenInvalid, "malformed token")
	}

	organizationID, ok := claims["org_id"].(string)
	if !ok || organizationID == "" {
		return "", idmerrors.New(idmerrors.ErrCodeTokenInvalid, "token missing org_id claim")
	}

	return organizationID, nil
}
