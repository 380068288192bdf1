package client

import (
	"context"
	"crypto/subtle"
	"errors"

	idmerrors "github.com/authsafe/authsafe/pkg/errors"
)

// ClientService validates registered OAuth2 clients
type ClientService struct {
	repository ClientRepository
}

// NewClientService creates a new client service with the provided repository
func NewClientService(repository ClientRepository) *ClientService {
	return &ClientService{
		repository: repository,
	}
}

// GetClient retrieves a client by client ID
func (s *ClientService) GetClient(ctx context.Context, clientID string) (*Client, error) {
	return s.repository.GetClient(ctx, clientID)
}

// Validate looks up a client by ID and, when a secret is supplied, checks it
// in constant time. An unknown client and a secret mismatch both map to the
// same CLIENT_INVALID failure.
func (s *ClientService) Validate(ctx context.Context, clientID string, clientSecret string) (*Client, error) {
	client, err := s.repository.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			return nil, idmerrors.New(idmerrors.ErrCodeClientInvalid, "client not found")
		}
		return nil, idmerrors.Internal(err, "failed to load client")
	}

	if clientSecret != "" {
		if subtle.ConstantTimeCompare([]byte(client.Secret), []byte(clientSecret)) != 1 {
			return nil, idmerrors.New(idmerrors.ErrCodeClientInvalid, "client not found")
		}
	}

	return client, nil
}

// ValidateAuthorizationRequest validates a client for the authorize endpoint:
// the client must exist, allow the authorization_code grant, and the supplied
// redirect URI must exactly match the registered one.
func (s *ClientService) ValidateAuthorizationRequest(ctx context.Context, clientID, redirectURI string) (*Client, error) {
	client, err := s.Validate(ctx, clientID, "")
	if err != nil {
		return nil, err
	}

	if !client.AllowsGrant(GrantAuthorizationCode) {
		return nil, idmerrors.Newf(idmerrors.ErrCodeClientInvalid,
			"client is not registered for the authorization_code grant")
	}

	if !client.ValidateRedirectURI(redirectURI) {
		return nil, idmerrors.New(idmerrors.ErrCodeRedirectMismatch, "mismatched redirect uri")
	}

	return client, nil
}
