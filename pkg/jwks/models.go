package jwks

import (
	"crypto/rsa"
	"encoding/base64"
	"math/big"

	"github.com/authsafe/authsafe/pkg/keys"
)

// JWKS represents a JSON Web Key Set as defined in RFC 7517
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key as defined in RFC 7517
type JWK struct {
	// Key Type - "RSA" for RSA keys
	Kty string `json:"kty"`

	// Key ID - the tenant secret identifier
	Kid string `json:"kid"`

	// Public Key Use - "sig" for signature
	Use string `json:"use"`

	// Algorithm - "RS256" for RSA with SHA-256
	Alg string `json:"alg"`

	// RSA public key modulus (base64url encoded)
	N string `json:"n"`

	// RSA public key exponent (base64url encoded)
	E string `json:"e"`
}

// EncodeRSAPublicKeyModulus encodes the RSA public key modulus as base64url
func EncodeRSAPublicKeyModulus(publicKey *rsa.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes())
}

// EncodeRSAPublicKeyExponent encodes the RSA public key exponent as base64url
func EncodeRSAPublicKeyExponent(publicKey *rsa.PublicKey) string {
	exponentBytes := big.NewInt(int64(publicKey.E)).Bytes()
	return base64.RawURLEncoding.EncodeToString(exponentBytes)
}

// FromSecret derives the public JWK for a tenant signing Secret
func FromSecret(secret *keys.Secret) JWK {
	return JWK{
		Kty: "RSA",
		Kid: secret.ID,
		Use: "sig",
		Alg: "RS256",
		N:   EncodeRSAPublicKeyModulus(secret.PublicKey),
		E:   EncodeRSAPublicKeyExponent(secret.PublicKey),
	}
}
