package keys

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSecretNotFound is returned when no signing Secret exists for the lookup
var ErrSecretNotFound = errors.New("secret not found")

// KeyRegistry defines the interface for tenant signing-key lookups
type KeyRegistry interface {
	// GetByOrganization retrieves the organization's active signing Secret
	GetByOrganization(ctx context.Context, organizationID string) (*Secret, error)

	// GetByKeyID retrieves a Secret by its key identifier
	GetByKeyID(ctx context.Context, kid string) (*Secret, error)

	// AddSecret stores a Secret, replacing any existing one for the organization
	AddSecret(ctx context.Context, secret *Secret) error

	// DeleteSecret removes an organization's Secret
	DeleteSecret(ctx context.Context, organizationID string) error
}

// InMemoryKeyRegistry implements KeyRegistry using in-memory storage
type InMemoryKeyRegistry struct {
	byOrg map[string]*Secret
	byKid map[string]*Secret
	mutex sync.RWMutex
}

// NewInMemoryKeyRegistry creates a new in-memory key registry
func NewInMemoryKeyRegistry() *InMemoryKeyRegistry {
	return &InMemoryKeyRegistry{
		byOrg: make(map[string]*Secret),
		byKid: make(map[string]*Secret),
	}
}

// GetByOrganization retrieves the organization's active signing Secret
func (r *InMemoryKeyRegistry) GetByOrganization(ctx context.Context, organizationID string) (*Secret, error) {
	if organizationID == "" {
		return nil, errors.New("organization ID cannot be empty")
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	secret, exists := r.byOrg[organizationID]
	if !exists {
		return nil, fmt.Errorf("%w: organization %s", ErrSecretNotFound, organizationID)
	}

	return secret, nil
}

// GetByKeyID retrieves a Secret by its key identifier
func (r *InMemoryKeyRegistry) GetByKeyID(ctx context.Context, kid string) (*Secret, error) {
	if kid == "" {
		return nil, errors.New("key ID cannot be empty")
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	secret, exists := r.byKid[kid]
	if !exists {
		return nil, fmt.Errorf("%w: kid %s", ErrSecretNotFound, kid)
	}

	return secret, nil
}

// AddSecret stores a Secret, replacing any existing one for the organization.
// One active Secret per organization is the invariant the registry maintains.
func (r *InMemoryKeyRegistry) AddSecret(ctx context.Context, secret *Secret) error {
	if secret == nil {
		return errors.New("secret cannot be nil")
	}
	if secret.ID == "" || secret.OrganizationID == "" {
		return errors.New("secret ID and organization ID are required")
	}
	if secret.PrivateKey == nil {
		return errors.New("secret private key is required")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, exists := r.byOrg[secret.OrganizationID]; exists {
		delete(r.byKid, existing.ID)
	}

	r.byOrg[secret.OrganizationID] = secret
	r.byKid[secret.ID] = secret

	return nil
}

// DeleteSecret removes an organization's Secret
func (r *InMemoryKeyRegistry) DeleteSecret(ctx context.Context, organizationID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	secret, exists := r.byOrg[organizationID]
	if !exists {
		return fmt.Errorf("%w: organization %s", ErrSecretNotFound, organizationID)
	}

	delete(r.byOrg, organizationID)
	delete(r.byKid, secret.ID)

	return nil
}
