package org

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrOrganizationNotFound is returned when no organization matches the lookup
var ErrOrganizationNotFound = errors.New("organization not found")

// Organization represents a tenant: the isolation boundary owning its own
// signing keypair and user/client sets.
type Organization struct {
	ID   string
	Name string
}

// OrganizationRepository defines the interface for organization lookups
type OrganizationRepository interface {
	// GetOrganization retrieves an organization by identifier
	GetOrganization(ctx context.Context, organizationID string) (*Organization, error)

	// CreateOrganization stores a new organization
	CreateOrganization(ctx context.Context, organization *Organization) error
}

// InMemoryOrganizationRepository implements OrganizationRepository in memory
type InMemoryOrganizationRepository struct {
	orgs  map[string]*Organization
	mutex sync.RWMutex
}

// NewInMemoryOrganizationRepository creates a new in-memory organization repository
func NewInMemoryOrganizationRepository() *InMemoryOrganizationRepository {
	return &InMemoryOrganizationRepository{
		orgs: make(map[string]*Organization),
	}
}

// GetOrganization retrieves an organization by identifier
func (r *InMemoryOrganizationRepository) GetOrganization(ctx context.Context, organizationID string) (*Organization, error) {
	if organizationID == "" {
		return nil, errors.New("organization ID cannot be empty")
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	organization, exists := r.orgs[organizationID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, organizationID)
	}

	result := *organization
	return &result, nil
}

// CreateOrganization stores a new organization
func (r *InMemoryOrganizationRepository) CreateOrganization(ctx context.Context, organization *Organization) error {
	if organization == nil {
		return errors.New("organization cannot be nil")
	}
	if organization.ID == "" {
		return errors.New("organization ID cannot be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.orgs[organization.ID]; exists {
		return fmt.Errorf("organization already exists: %s", organization.ID)
	}

	stored := *organization
	r.orgs[organization.ID] = &stored
	return nil
}
