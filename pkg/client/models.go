package client

// GrantType identifies the OAuth2 grant a client is registered for
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantClientCredentials GrantType = "client_credentials"
	GrantRefreshToken      GrantType = "refresh_token"
)

// Client represents a registered OAuth2 client application
type Client struct {
	// ID is the public client identifier
	ID string

	// Secret is the confidential client secret, required for code exchange
	Secret string

	// Name is the display name of the client application
	Name string

	// RedirectURI is the registered redirect URI. Matching is exact: the URI
	// supplied at authorize and at token must both equal this value.
	RedirectURI string

	// GrantType the client is registered for
	GrantType GrantType

	// OrganizationID is the owning tenant
	OrganizationID string
}

// AllowsGrant reports whether the client is registered for the grant type
func (c *Client) AllowsGrant(grant GrantType) bool {
	return c.GrantType == grant
}

// ValidateRedirectURI reports whether the supplied URI exactly matches the
// registered one. Mismatch is a hard failure, not a warning.
func (c *Client) ValidateRedirectURI(redirectURI string) bool {
	return redirectURI != "" && c.RedirectURI == redirectURI
}
