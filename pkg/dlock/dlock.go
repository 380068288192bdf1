package dlock

import (
	"context"
	"errors"
	"time"
)

// ErrContended is returned when a lock could not be acquired because another
// holder owns it. Callers treat this as a conflict, not an internal failure.
var ErrContended = errors.New("lock is held by another process")

// ErrNotHeld is returned when releasing or extending a lock that is no longer
// held, typically because its TTL expired.
var ErrNotHeld = errors.New("lock is not held")

// Lock represents a held named lock
type Lock interface {
	// Resource returns the lock's resource name
	Resource() string
}

// Mutex defines the interface for a TTL-bound, named distributed lock.
// Acquisition is bounded by retries; the TTL bounds worst-case hold time if
// the holder crashes.
type Mutex interface {
	// Acquire obtains the named lock with the given TTL, retrying a bounded
	// number of times before failing with ErrContended
	Acquire(ctx context.Context, resource string, ttl time.Duration) (Lock, error)

	// Release frees the lock. Safe to defer on every exit path.
	Release(ctx context.Context, lock Lock) error

	// Extend renews the lock for another TTL window
	Extend(ctx context.Context, lock Lock) error
}
