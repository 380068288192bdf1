package login

import (
	"context"
	"errors"
	"log/slog"

	idmerrors "github.com/authsafe/authsafe/pkg/errors"
)

// CredentialValidator verifies user credentials against tenant-scoped lookups
type CredentialValidator struct {
	repository UserRepository
	hasher     *Argon2Hasher
}

// NewCredentialValidator creates a new credential validator
func NewCredentialValidator(repository UserRepository) *CredentialValidator {
	return &CredentialValidator{
		repository: repository,
		hasher:     NewArgon2Hasher(),
	}
}

// Validate verifies the email/password pair within the organization and
// returns the user on success. An unknown user and a wrong password both map
// to the same generic AUTH_FAILED error so callers cannot probe for account
// existence.
func (v *CredentialValidator) Validate(ctx context.Context, email, password, organizationID string) (*User, error) {
	user, err := v.repository.GetByEmail(ctx, email, organizationID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, idmerrors.New(idmerrors.ErrCodeAuthFailed, "incorrect credentials")
		}
		return nil, idmerrors.Internal(err, "failed to load user")
	}

	ok, err := v.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		slog.Error("Failed to verify password hash", "user_id", user.ID, "err", err)
		return nil, idmerrors.Internal(err, "failed to verify credentials")
	}
	if !ok {
		return nil, idmerrors.New(idmerrors.ErrCodeAuthFailed, "incorrect credentials")
	}

	return user, nil
}
