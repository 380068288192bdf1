package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLogger implements Logger by appending to the authorization_logs
// table. Writes are append-only; nothing in the core reads them back.
type PostgresLogger struct {
	db *pgxpool.Pool
}

// NewPostgresLogger creates an audit logger backed by PostgreSQL
func NewPostgresLogger(db *pgxpool.Pool) (*PostgresLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &PostgresLogger{db: db}, nil
}

// LogAuthorization records an authorization lifecycle event
func (l *PostgresLogger) LogAuthorization(ctx context.Context, event Event) error {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	_, err := l.db.Exec(ctx,
		`INSERT INTO authorization_logs (id, user_id, client_id, organization_id, message, ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), event.UserID, event.ClientID, event.OrganizationID,
		event.Message, event.IP, timestamp)
	if err != nil {
		return fmt.Errorf("failed to record authorization event: %w", err)
	}

	return nil
}
