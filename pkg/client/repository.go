package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClientNotFound is returned when no client matches the lookup
var ErrClientNotFound = errors.New("client not found")

// ClientRepository defines the interface for client data access operations
type ClientRepository interface {
	// GetClient retrieves a client by its public identifier
	GetClient(ctx context.Context, clientID string) (*Client, error)

	// CreateClient registers a new client
	CreateClient(ctx context.Context, client *Client) error

	// DeleteClient removes a client by its identifier
	DeleteClient(ctx context.Context, clientID string) error

	// ListClients returns all registered clients
	ListClients(ctx context.Context) ([]*Client, error)
}

// InMemoryClientRepository implements ClientRepository using in-memory storage
type InMemoryClientRepository struct {
	clients map[string]*Client
	mutex   sync.RWMutex
}

// NewInMemoryClientRepository creates a new in-memory client repository
func NewInMemoryClientRepository() *InMemoryClientRepository {
	return &InMemoryClientRepository{
		clients: make(map[string]*Client),
	}
}

// GetClient retrieves a client by its public identifier
func (r *InMemoryClientRepository) GetClient(ctx context.Context, clientID string) (*Client, error) {
	if clientID == "" {
		return nil, errors.New("client ID cannot be empty")
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	client, exists := r.clients[clientID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	result := *client
	return &result, nil
}

// CreateClient registers a new client
func (r *InMemoryClientRepository) CreateClient(ctx context.Context, client *Client) error {
	if client == nil {
		return errors.New("client cannot be nil")
	}
	if client.ID == "" {
		return errors.New("client ID cannot be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.clients[client.ID]; exists {
		return fmt.Errorf("client already exists: %s", client.ID)
	}

	stored := *client
	r.clients[client.ID] = &stored
	return nil
}

// DeleteClient removes a client by its identifier
func (r *InMemoryClientRepository) DeleteClient(ctx context.Context, clientID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.clients[clientID]; !exists {
		return fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	delete(r.clients, clientID)
	return nil
}

// ListClients returns all registered clients
func (r *InMemoryClientRepository) ListClients(ctx context.Context) ([]*Client, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		result := *client
		clients = append(clients, &result)
	}

	return clients, nil
}
