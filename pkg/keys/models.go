package keys

import (
	"crypto/rsa"
	"time"
)

// Secret represents a tenant's RSA signing keypair.
// Exactly one Secret is active per organization; the private key never leaves
// the signing boundary and only the public key is exposed via JWKS.
type Secret struct {
	// ID is the key identifier, published as the JWT "kid" header
	ID string

	// OrganizationID is the owning tenant
	OrganizationID string

	// RSA private key used for RS256 signing
	PrivateKey *rsa.PrivateKey

	// RSA public key (derived from the private key)
	PublicKey *rsa.PublicKey

	CreatedAt time.Time
}
