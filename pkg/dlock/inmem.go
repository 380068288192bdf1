package dlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryMutex implements Mutex with process-local state. It provides the
// same acquire/release/extend semantics as the Redis implementation but only
// excludes holders within a single process, so it is suitable for tests and
// single-instance deployments only.
type InMemoryMutex struct {
	holders    map[string]*inMemoryLock
	mutex      sync.Mutex
	tries      int
	retryDelay time.Duration
}

// NewInMemoryMutex creates a new process-local mutex
func NewInMemoryMutex() *InMemoryMutex {
	return &InMemoryMutex{
		holders:    make(map[string]*inMemoryLock),
		tries:      DefaultTries,
		retryDelay: 10 * time.Millisecond,
	}
}

type inMemoryLock struct {
	resource string
	token    string
	ttl      time.Duration
	expires  time.Time
}

func (l *inMemoryLock) Resource() string {
	return l.resource
}

// Acquire obtains the named lock with the given TTL
func (m *InMemoryMutex) Acquire(ctx context.Context, resource string, ttl time.Duration) (Lock, error) {
	for attempt := 0; attempt < m.tries; attempt++ {
		if lock := m.tryAcquire(resource, ttl); lock != nil {
			return lock, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrContended, resource)
}

func (m *InMemoryMutex) tryAcquire(resource string, ttl time.Duration) *inMemoryLock {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if held, exists := m.holders[resource]; exists && time.Now().Before(held.expires) {
		return nil
	}

	lock := &inMemoryLock{
		resource: resource,
		token:    uuid.New().String(),
		ttl:      ttl,
		expires:  time.Now().Add(ttl),
	}
	m.holders[resource] = lock
	return lock
}

// Release frees the lock
func (m *InMemoryMutex) Release(ctx context.Context, lock Lock) error {
	il, ok := lock.(*inMemoryLock)
	if !ok {
		return fmt.Errorf("lock was not acquired by this mutex")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	held, exists := m.holders[il.resource]
	if !exists || held.token != il.token {
		return fmt.Errorf("%w: %s", ErrNotHeld, il.resource)
	}

	delete(m.holders, il.resource)
	return nil
}

// Extend renews the lock for another TTL window from now
func (m *InMemoryMutex) Extend(ctx context.Context, lock Lock) error {
	il, ok := lock.(*inMemoryLock)
	if !ok {
		return fmt.Errorf("lock was not acquired by this mutex")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	held, exists := m.holders[il.resource]
	if !exists || held.token != il.token || time.Now().After(held.expires) {
		return fmt.Errorf("%w: %s", ErrNotHeld, il.resource)
	}

	held.expires = time.Now().Add(held.ttl)
	return nil
}
