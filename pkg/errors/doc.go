// Package errors provides structured error handling with error codes for authsafe.
//
// It standardizes error handling across the authorization core with typed error
// codes, structured error details, and automatic HTTP status code mapping.
//
// # Basic Usage
//
//	import "github.com/authsafe/authsafe/pkg/errors"
//
//	// Create a simple error
//	err := errors.New(errors.ErrCodeCodeInvalid, "code not valid")
//
//	// Wrap an existing error
//	err := errors.Wrap(storeErr, errors.ErrCodeInternal, "failed to load authorization code")
//
//	// Map to an HTTP response status
//	status := errors.MapErrorCodeToHTTPStatus(errors.GetCode(err))
//
// Error codes are organized around the authorization-code flow: credential
// failures (AUTH_FAILED), client validation (CLIENT_INVALID,
// REDIRECT_URI_MISMATCH), code lifecycle (CODE_INVALID, LOCK_CONTENTION),
// token verification (TOKEN_EXPIRED, TOKEN_INVALID), and tenant key
// configuration (TENANT_MISCONFIGURED).
package errors
