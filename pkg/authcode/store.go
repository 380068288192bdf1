package authcode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound is returned when a code is absent, already consumed, or has
// been evicted by its TTL
var ErrNotFound = errors.New("authorization code not found")

// Store defines the interface for authorization code persistence
type Store interface {
	// Create stores a new authorization code
	Create(ctx context.Context, code *AuthorizationCode) error

	// Get retrieves an authorization code by its value
	Get(ctx context.Context, code string) (*AuthorizationCode, error)

	// Delete removes an authorization code. Returns ErrNotFound if it was
	// already consumed.
	Delete(ctx context.Context, code string) error
}

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	codes map[string]*AuthorizationCode
	mutex sync.RWMutex
}

// NewInMemoryStore creates a new in-memory authorization code store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		codes: make(map[string]*AuthorizationCode),
	}
}

// Create stores a new authorization code
func (s *InMemoryStore) Create(ctx context.Context, code *AuthorizationCode) error {
	if code == nil {
		return errors.New("authorization code cannot be nil")
	}
	if code.Code == "" {
		return errors.New("authorization code cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.codes[code.Code]; exists {
		return fmt.Errorf("authorization code already exists: %s", code.Code)
	}

	stored := *code
	s.codes[code.Code] = &stored

	return nil
}

// Get retrieves an authorization code by its value. Expiry is the caller's
// concern; the store only reports presence.
func (s *InMemoryStore) Get(ctx context.Context, code string) (*AuthorizationCode, error) {
	if code == "" {
		return nil, errors.New("authorization code cannot be empty")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	authCode, exists := s.codes[code]
	if !exists {
		return nil, ErrNotFound
	}

	// Return a copy to prevent external modification
	result := *authCode
	return &result, nil
}

// Delete removes an authorization code
func (s *InMemoryStore) Delete(ctx context.Context, code string) error {
	if code == "" {
		return errors.New("authorization code cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.codes[code]; !exists {
		return ErrNotFound
	}

	delete(s.codes, code)
	return nil
}

// PruneExpired removes codes whose expiry has passed. The Redis store relies
// on key TTLs instead.
func (s *InMemoryStore) PruneExpired(now time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pruned := 0
	for key, code := range s.codes {
		if code.IsExpired(now) {
			delete(s.codes, key)
			pruned++
		}
	}
	return pruned
}
