package keys

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKeyRegistry implements KeyRegistry using PostgreSQL.
// Private and public keys are stored as PEM text columns.
type PostgresKeyRegistry struct {
	db *pgxpool.Pool
}

// NewPostgresKeyRegistry creates a new PostgreSQL key registry
func NewPostgresKeyRegistry(db *pgxpool.Pool) (*PostgresKeyRegistry, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &PostgresKeyRegistry{db: db}, nil
}

// GetByOrganization retrieves the organization's active signing Secret
func (r *PostgresKeyRegistry) GetByOrganization(ctx context.Context, organizationID string) (*Secret, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, organization_id, private_key, public_key, created_at
		 FROM secrets WHERE organization_id = $1`, organizationID)
	return r.scanSecret(row, organizationID)
}

// GetByKeyID retrieves a Secret by its key identifier
func (r *PostgresKeyRegistry) GetByKeyID(ctx context.Context, kid string) (*Secret, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, organization_id, private_key, public_key, created_at
		 FROM secrets WHERE id = $1`, kid)
	return r.scanSecret(row, kid)
}

// AddSecret stores a Secret, replacing any existing one for the organization
func (r *PostgresKeyRegistry) AddSecret(ctx context.Context, secret *Secret) error {
	if secret == nil {
		return errors.New("secret cannot be nil")
	}

	createdAt := secret.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO secrets (id, organization_id, private_key, public_key, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (organization_id) DO UPDATE
		 SET id = EXCLUDED.id,
		     private_key = EXCLUDED.private_key,
		     public_key = EXCLUDED.public_key,
		     created_at = EXCLUDED.created_at`,
		secret.ID, secret.OrganizationID,
		EncodePrivateKeyToPEM(secret.PrivateKey),
		EncodePublicKeyToPEM(secret.PublicKey),
		createdAt)
	if err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}

	return nil
}

// DeleteSecret removes an organization's Secret
func (r *PostgresKeyRegistry) DeleteSecret(ctx context.Context, organizationID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM secrets WHERE organization_id = $1`, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: organization %s", ErrSecretNotFound, organizationID)
	}
	return nil
}

func (r *PostgresKeyRegistry) scanSecret(row pgx.Row, lookup string) (*Secret, error) {
	var (
		secret        Secret
		privateKeyPEM string
		publicKeyPEM  string
	)

	err := row.Scan(&secret.ID, &secret.OrganizationID, &privateKeyPEM, &publicKeyPEM, &secret.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, lookup)
		}
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}

	secret.PrivateKey, err = DecodePrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored private key: %w", err)
	}

	secret.PublicKey, err = DecodePublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored public key: %w", err)
	}

	return &secret, nil
}
