// Package audit records authorization lifecycle events for compliance.
//
// The authorization core reports code issuance, code exchange, and validation
// failures here; the sink is an external collaborator, but its call contract
// is part of the core's observable behavior.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Authorization lifecycle event messages
const (
	EventCodeCreated       = "Authorization code created"
	EventCodeExchanged     = "Code exchanged for tokens"
	EventValidationFailure = "Authorization validation failed"
)

// Event represents a single authorization lifecycle event
type Event struct {
	UserID         string
	ClientID       string
	OrganizationID string
	Message        string
	IP             string
	Timestamp      time.Time
}

// Logger defines the audit sink contract
type Logger interface {
	// LogAuthorization records an authorization lifecycle event
	LogAuthorization(ctx context.Context, event Event) error
}

// SlogLogger implements Logger by writing structured log records
type SlogLogger struct{}

// NewSlogLogger creates an audit logger backed by slog
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// LogAuthorization records an authorization lifecycle event
func (l *SlogLogger) LogAuthorization(ctx context.Context, event Event) error {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	slog.InfoContext(ctx, "authorization event",
		"message", event.Message,
		"user_id", event.UserID,
		"client_id", event.ClientID,
		"organization_id", event.OrganizationID,
		"ip", event.IP,
		"timestamp", timestamp.Format(time.RFC3339))

	return nil
}
