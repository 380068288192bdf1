package authcode

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// AuthorizationCode represents a single-use, short-lived authorization code.
// The opaque code string is the entity's identity and its lock resource name.
// Lifecycle: created by authorize, read once and deleted by token exchange,
// never updated.
type AuthorizationCode struct {
	Code           string    `json:"code"`
	ClientID       string    `json:"client_id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	RedirectURI    string    `json:"redirect_uri"`
	Scopes         []string  `json:"scopes"`
	State          string    `json:"state,omitempty"`
	Nonce          string    `json:"nonce,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsExpired reports whether the code's expiry has passed
func (c *AuthorizationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// GenerateCode returns a new opaque random code string
func GenerateCode() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
