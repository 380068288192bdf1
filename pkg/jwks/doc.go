// Package jwks publishes per-tenant JSON Web Key Sets (RFC 7517).
//
// Each organization owns exactly one active RSA signing Secret; this package
// exposes its public half as a single-key JWKS document so resource servers
// can verify RS256 signatures by kid without a central key directory.
package jwks
