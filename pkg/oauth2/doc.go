// Package oauth2 orchestrates the OAuth2/OIDC authorization-code grant.
//
// Authorize validates credentials and client registration, then issues a
// short-lived single-use code. Exchange redeems that code exactly once for
// RS256-signed ID and access tokens: a distributed lock named after the code
// value is held across the read-validate-delete-issue sequence so that, of N
// concurrent exchange attempts on the same code, exactly one succeeds across
// all server instances.
package oauth2
