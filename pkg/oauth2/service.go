package oauth2

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/authsafe/authsafe/pkg/audit"
	"github.com/authsafe/authsafe/pkg/authcode"
	"github.com/authsafe/authsafe/pkg/client"
	"github.com/authsafe/authsafe/pkg/dlock"
	idmerrors "github.com/authsafe/authsafe/pkg/errors"
	"github.com/authsafe/authsafe/pkg/keys"
	"github.com/authsafe/authsafe/pkg/login"
	"github.com/authsafe/authsafe/pkg/org"
	"github.com/authsafe/authsafe/pkg/token"
)

// lockPrefix names the lock resource derived from a code value
const lockPrefix = "locks:authorization_code:"

// AuthorizationService orchestrates the authorization-code grant: code
// issuance after credential validation, and at-most-once code exchange
// guarded by the distributed mutex.
type AuthorizationService struct {
	codes          authcode.Store
	clients        *client.ClientService
	credentials    *login.CredentialValidator
	users          login.UserRepository
	orgs           org.OrganizationRepository
	registry       keys.KeyRegistry
	issuer         *token.Issuer
	locks          dlock.Mutex
	auditor        audit.Logger
	codeExpiration time.Duration
	lockTTL        time.Duration
}

// Option is a function that configures an AuthorizationService
type Option func(*AuthorizationService)

// WithCodeExpiration sets the authorization code lifetime
func WithCodeExpiration(duration time.Duration) Option {
	return func(s *AuthorizationService) {
		s.codeExpiration = duration
	}
}

// WithLockTTL sets the distributed lock TTL bounding worst-case exchange latency
func WithLockTTL(ttl time.Duration) Option {
	return func(s *AuthorizationService) {
		s.lockTTL = ttl
	}
}

// NewAuthorizationService wires the authorization-code flow
func NewAuthorizationService(
	codes authcode.Store,
	clients *client.ClientService,
	credentials *login.CredentialValidator,
	users login.UserRepository,
	orgs org.OrganizationRepository,
	registry keys.KeyRegistry,
	issuer *token.Issuer,
	locks dlock.Mutex,
	auditor audit.Logger,
	opts ...Option,
) *AuthorizationService {
	service := &AuthorizationService{
		codes:          codes,
		clients:        clients,
		credentials:    credentials,
		users:          users,
		orgs:           orgs,
		registry:       registry,
		issuer:         issuer,
		locks:          locks,
		auditor:        auditor,
		codeExpiration: 10 * time.Minute,
		lockTTL:        30 * time.Second,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// AuthorizeParams carries the authorize request inputs
type AuthorizeParams struct {
	Email          string
	Password       string
	ClientID       string
	OrganizationID string
	RedirectURI    string
	ResponseType   string
	Scopes         []string
	State          string
	Nonce          string
	IP             string
}

// AuthorizeResult is returned to the client application for the redirect leg
type AuthorizeResult struct {
	Code        string
	State       string
	RedirectURI string
}

// Authorize validates the user's credentials and the client registration,
// then issues a short-lived single-use authorization code.
func (s *AuthorizationService) Authorize(ctx context.Context, params AuthorizeParams) (*AuthorizeResult, error) {
	if params.ResponseType != "code" {
		return nil, idmerrors.Newf(idmerrors.ErrCodeInvalidInput,
			"unsupported response_type: %s", params.ResponseType)
	}
	if !slices.Contains(params.Scopes, token.ScopeOpenID) {
		return nil, idmerrors.New(idmerrors.ErrCodeInvalidInput,
			"openid scope is required in authentication scenario")
	}

	if _, err := s.orgs.GetOrganization(ctx, params.OrganizationID); err != nil {
		if errors.Is(err, org.ErrOrganizationNotFound) {
			return nil, idmerrors.New(idmerrors.ErrCodeNotFound, "organization not found")
		}
		return nil, idmerrors.Internal(err, "failed to load organization")
	}

	user, err := s.credentials.Validate(ctx, params.Email, params.Password, params.OrganizationID)
	if err != nil {
		s.auditFailure(ctx, "", params.ClientID, params.OrganizationID, params.IP)
		return nil, err
	}

	cl, err := s.clients.ValidateAuthorizationRequest(ctx, params.ClientID, params.RedirectURI)
	if err != nil {
		s.auditFailure(ctx, user.ID, params.ClientID, params.OrganizationID, params.IP)
		return nil, err
	}
	if cl.OrganizationID != params.OrganizationID {
		s.auditFailure(ctx, user.ID, params.ClientID, params.OrganizationID, params.IP)
		return nil, idmerrors.New(idmerrors.ErrCodeClientInvalid, "client not found")
	}

	code, err := authcode.GenerateCode()
	if err != nil {
		return nil, idmerrors.Internal(err, "failed to generate authorization code")
	}

	now := time.Now().UTC()
	authCode := &authcode.AuthorizationCode{
		Code:           code,
		ClientID:       cl.ID,
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		RedirectURI:    params.RedirectURI,
		Scopes:         params.Scopes,
		State:          params.State,
		Nonce:          params.Nonce,
		ExpiresAt:      now.Add(s.codeExpiration),
		CreatedAt:      now,
	}

	if err := s.codes.Create(ctx, authCode); err != nil {
		return nil, idmerrors.Internal(err, "failed to store authorization code")
	}

	s.audit(ctx, audit.Event{
		UserID:         user.ID,
		ClientID:       cl.ID,
		OrganizationID: user.OrganizationID,
		Message:        audit.EventCodeCreated,
		IP:             params.IP,
	})

	return &AuthorizeResult{
		Code:        code,
		State:       params.State,
		RedirectURI: params.RedirectURI,
	}, nil
}

// ExchangeParams carries the token request inputs
type ExchangeParams struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
}

// TokenResult carries the signed tokens returned from a successful exchange
type TokenResult struct {
	IDToken     string
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

// Exchange performs the at-most-once code-for-tokens exchange.
//
// The named lock on the code value is held across the whole
// read-validate-delete-issue sequence, so a second request that wins the lock
// after release observes the code as already consumed, never as still valid.
// The code is deleted before signing: a signing failure after deletion burns
// the code and the client must restart the flow.
func (s *AuthorizationService) Exchange(ctx context.Context, params ExchangeParams) (*TokenResult, error) {
	if params.GrantType != string(client.GrantAuthorizationCode) {
		return nil, idmerrors.Newf(idmerrors.ErrCodeInvalidInput,
			"unsupported grant_type: %s", params.GrantType)
	}
	if params.Code == "" {
		return nil, idmerrors.New(idmerrors.ErrCodeInvalidInput, "code is required")
	}
	if params.ClientSecret == "" {
		return nil, idmerrors.New(idmerrors.ErrCodeClientInvalid, "client secret is required")
	}

	cl, err := s.clients.Validate(ctx, params.ClientID, params.ClientSecret)
	if err != nil {
		return nil, err
	}

	lock, err := s.locks.Acquire(ctx, lockPrefix+params.Code, s.lockTTL)
	if err != nil {
		if errors.Is(err, dlock.ErrContended) {
			return nil, idmerrors.New(idmerrors.ErrCodeLockContention,
				"code exchange already in progress")
		}
		return nil, idmerrors.Internal(err, "failed to acquire exchange lock")
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), lock); err != nil {
			slog.Error("Failed to release exchange lock", "resource", lock.Resource(), "err", err)
		}
	}()

	authCode, err := s.codes.Get(ctx, params.Code)
	if err != nil {
		if errors.Is(err, authcode.ErrNotFound) {
			return nil, idmerrors.New(idmerrors.ErrCodeCodeInvalid, "code not valid")
		}
		return nil, idmerrors.Internal(err, "failed to load authorization code")
	}

	if authCode.IsExpired(time.Now().UTC()) {
		// Expired codes are never resurrected or extended
		return nil, idmerrors.New(idmerrors.ErrCodeCodeInvalid, "code not valid")
	}

	if authCode.ClientID != cl.ID {
		return nil, idmerrors.New(idmerrors.ErrCodeClientInvalid,
			"code was issued to a different client")
	}
	if authCode.RedirectURI != params.RedirectURI {
		// The code stays unconsumed: a retry with the registered URI succeeds
		return nil, idmerrors.New(idmerrors.ErrCodeRedirectMismatch, "mismatched redirect uri")
	}

	// Single-use enforcement: delete before signing so no retry can reuse it
	if err := s.codes.Delete(ctx, params.Code); err != nil {
		if errors.Is(err, authcode.ErrNotFound) {
			return nil, idmerrors.New(idmerrors.ErrCodeCodeInvalid, "code not valid")
		}
		return nil, idmerrors.Internal(err, "failed to consume authorization code")
	}

	user, err := s.users.GetByID(ctx, authCode.UserID)
	if err != nil {
		if errors.Is(err, login.ErrUserNotFound) {
			return nil, idmerrors.New(idmerrors.ErrCodeCodeInvalid, "code not valid")
		}
		return nil, idmerrors.Internal(err, "failed to load user")
	}

	secret, err := s.registry.GetByOrganization(ctx, user.OrganizationID)
	if err != nil {
		if errors.Is(err, keys.ErrSecretNotFound) {
			return nil, idmerrors.Wrapf(err, idmerrors.ErrCodeTenantMisconfigured,
				"no signing key for organization %s", user.OrganizationID)
		}
		return nil, idmerrors.Internal(err, "failed to load organization signing key")
	}

	idToken, err := s.issuer.GenerateIDToken(user, cl, authCode.Scopes, authCode.Nonce, secret)
	if err != nil {
		return nil, idmerrors.Internal(err, "failed to sign id token")
	}

	accessToken, err := s.issuer.GenerateAccessToken(user, cl, authCode.Scopes, secret)
	if err != nil {
		return nil, idmerrors.Internal(err, "failed to sign access token")
	}

	s.audit(ctx, audit.Event{
		UserID:         user.ID,
		ClientID:       cl.ID,
		OrganizationID: user.OrganizationID,
		Message:        audit.EventCodeExchanged,
	})

	return &TokenResult{
		IDToken:     idToken,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.issuer.TokenExpiration().Seconds()),
	}, nil
}

// Userinfo verifies a presented bearer token and returns its claim set
func (s *AuthorizationService) Userinfo(ctx context.Context, bearerToken string) (map[string]interface{}, error) {
	claims, err := s.issuer.ValidateToken(ctx, bearerToken)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthorizationService) audit(ctx context.Context, event audit.Event) {
	if err := s.auditor.LogAuthorization(ctx, event); err != nil {
		slog.Error("Failed to record audit event", "message", event.Message, "err", err)
	}
}

func (s *AuthorizationService) auditFailure(ctx context.Context, userID, clientID, organizationID, ip string) {
	s.audit(ctx, audit.Event{
		UserID:         userID,
		ClientID:       clientID,
		OrganizationID: organizationID,
		Message:        audit.EventValidationFailure,
		IP:             ip,
	})
}

// CodeExpiration returns the configured authorization code lifetime
func (s *AuthorizationService) CodeExpiration() time.Duration {
	return s.codeExpiration
}

// LockResource returns the lock resource name derived from a code value
func LockResource(code string) string {
	return fmt.Sprintf("%s%s", lockPrefix, code)
}
