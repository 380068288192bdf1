package login

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUserNotFound is returned when no user matches the lookup
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user lookups the flow needs
type UserRepository interface {
	// GetByEmail retrieves a user by tenant-scoped email
	GetByEmail(ctx context.Context, email, organizationID string) (*User, error)

	// GetByID retrieves a user by identifier
	GetByID(ctx context.Context, userID string) (*User, error)

	// CreateUser stores a new user
	CreateUser(ctx context.Context, user *User) error
}

// InMemoryUserRepository implements UserRepository using in-memory storage
type InMemoryUserRepository struct {
	byID    map[string]*User
	byEmail map[string]*User
	mutex   sync.RWMutex
}

// NewInMemoryUserRepository creates a new in-memory user repository
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func emailKey(email, organizationID string) string {
	return organizationID + "/" + strings.ToLower(email)
}

// GetByEmail retrieves a user by tenant-scoped email
func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email, organizationID string) (*User, error) {
	if email == "" || organizationID == "" {
		return nil, errors.New("email and organization ID cannot be empty")
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, exists := r.byEmail[emailKey(email, organizationID)]
	if !exists {
		return nil, ErrUserNotFound
	}

	result := *user
	return &result, nil
}

// GetByID retrieves a user by identifier
func (r *InMemoryUserRepository) GetByID(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, exists := r.byID[userID]
	if !exists {
		return nil, ErrUserNotFound
	}

	result := *user
	return &result, nil
}

// CreateUser stores a new user
func (r *InMemoryUserRepository) CreateUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if user.ID == "" || user.Email == "" || user.OrganizationID == "" {
		return errors.New("user ID, email, and organization ID are required")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return fmt.Errorf("user already exists: %s", user.ID)
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[emailKey(user.Email, user.OrganizationID)] = &stored
	return nil
}
