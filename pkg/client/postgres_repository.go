package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresClientRepository implements ClientRepository using PostgreSQL
type PostgresClientRepository struct {
	db *pgxpool.Pool
}

// NewPostgresClientRepository creates a new PostgreSQL client repository
func NewPostgresClientRepository(db *pgxpool.Pool) (*PostgresClientRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &PostgresClientRepository{db: db}, nil
}

// GetClient retrieves a client by its public identifier
func (r *PostgresClientRepository) GetClient(ctx context.Context, clientID string) (*Client, error) {
	var client Client
	err := r.db.QueryRow(ctx,
		`SELECT id, secret, name, redirect_uri, grant_type, organization_id
		 FROM clients WHERE id = $1`, clientID).
		Scan(&client.ID, &client.Secret, &client.Name, &client.RedirectURI,
			&client.GrantType, &client.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &client, nil
}

// CreateClient registers a new client
func (r *PostgresClientRepository) CreateClient(ctx context.Context, client *Client) error {
	if client == nil {
		return errors.New("client cannot be nil")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO clients (id, secret, name, redirect_uri, grant_type, organization_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		client.ID, client.Secret, client.Name, client.RedirectURI,
		client.GrantType, client.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// DeleteClient removes a client by its identifier
func (r *PostgresClientRepository) DeleteClient(ctx context.Context, clientID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	return nil
}

// ListClients returns all registered clients
func (r *PostgresClientRepository) ListClients(ctx context.Context) ([]*Client, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, secret, name, redirect_uri, grant_type, organization_id FROM clients`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		var client Client
		if err := rows.Scan(&client.ID, &client.Secret, &client.Name, &client.RedirectURI,
			&client.GrantType, &client.OrganizationID); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, &client)
	}

	return clients, rows.Err()
}
