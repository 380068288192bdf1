package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *pgxpool.Pool) (*PostgresUserRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &PostgresUserRepository{db: db}, nil
}

// GetByEmail retrieves a user by tenant-scoped email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email, organizationID string) (*User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT u.id, u.organization_id, u.email, u.email_verified, u.name, u.password_hash, r.key
		 FROM users u LEFT JOIN roles r ON r.id = u.role_id
		 WHERE lower(u.email) = lower($1) AND u.organization_id = $2`,
		email, organizationID)
	return r.scanUser(ctx, row)
}

// GetByID retrieves a user by identifier
func (r *PostgresUserRepository) GetByID(ctx context.Context, userID string) (*User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT u.id, u.organization_id, u.email, u.email_verified, u.name, u.password_hash, r.key
		 FROM users u LEFT JOIN roles r ON r.id = u.role_id
		 WHERE u.id = $1`, userID)
	return r.scanUser(ctx, row)
}

// CreateUser stores a new user. Role assignment is managed elsewhere; only
// the columns the flow needs are written.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, organization_id, email, email_verified, name, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.OrganizationID, user.Email, user.EmailVerified, user.Name, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) scanUser(ctx context.Context, row pgx.Row) (*User, error) {
	var (
		user    User
		roleKey *string
	)

	err := row.Scan(&user.ID, &user.OrganizationID, &user.Email, &user.EmailVerified,
		&user.Name, &user.PasswordHash, &roleKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if roleKey != nil {
		role := &Role{Key: *roleKey}

		rows, err := r.db.Query(ctx,
			`SELECT p.key FROM permissions p
			 JOIN role_permissions rp ON rp.permission_id = p.id
			 JOIN users u ON u.role_id = rp.role_id
			 WHERE u.id = $1`, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load permissions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var permission Permission
			if err := rows.Scan(&permission.Key); err != nil {
				return nil, fmt.Errorf("failed to scan permission: %w", err)
			}
			role.Permissions = append(role.Permissions, permission)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load permissions: %w", err)
		}

		user.Role = role
	}

	return &user, nil
}
