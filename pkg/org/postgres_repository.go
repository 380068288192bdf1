package org

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOrganizationRepository implements OrganizationRepository using PostgreSQL
type PostgresOrganizationRepository struct {
	db *pgxpool.Pool
}

// NewPostgresOrganizationRepository creates a new PostgreSQL organization repository
func NewPostgresOrganizationRepository(db *pgxpool.Pool) (*PostgresOrganizationRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &PostgresOrganizationRepository{db: db}, nil
}

// GetOrganization retrieves an organization by identifier
func (r *PostgresOrganizationRepository) GetOrganization(ctx context.Context, organizationID string) (*Organization, error) {
	var organization Organization
	err := r.db.QueryRow(ctx,
		`SELECT id, name FROM organizations WHERE id = $1`, organizationID).
		Scan(&organization.ID, &organization.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, organizationID)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &organization, nil
}

// CreateOrganization stores a new organization
func (r *PostgresOrganizationRepository) CreateOrganization(ctx context.Context, organization *Organization) error {
	if organization == nil {
		return errors.New("organization cannot be nil")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO organizations (id, name) VALUES ($1, $2)`,
		organization.ID, organization.Name)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}
