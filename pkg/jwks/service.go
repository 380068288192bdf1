package jwks

import (
	"context"
	"errors"
	"fmt"

	idmerrors "github.com/authsafe/authsafe/pkg/errors"
	"github.com/authsafe/authsafe/pkg/keys"
)

// Publisher derives per-tenant JWKS documents from the key registry
type Publisher struct {
	registry keys.KeyRegistry
}

// NewPublisher creates a new JWKS publisher backed by the key registry
func NewPublisher(registry keys.KeyRegistry) *Publisher {
	return &Publisher{registry: registry}
}

// GetJWKS returns the organization's public keys in JWKS format.
// Exactly one key is published per tenant at a time.
func (p *Publisher) GetJWKS(ctx context.Context, organizationID string) (*JWKS, error) {
	secret, err := p.registry.GetByOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, keys.ErrSecretNotFound) {
			return nil, idmerrors.Wrapf(err, idmerrors.ErrCodeTenantMisconfigured,
				"no signing key for organization %s", organizationID)
		}
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	return &JWKS{
		Keys: []JWK{FromSecret(secret)},
	}, nil
}
