package dlock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTries bounds acquisition retries before failing with ErrContended
	DefaultTries = 10

	// DefaultRetryDelay is the base delay between acquisition attempts
	DefaultRetryDelay = 200 * time.Millisecond

	// retryJitter spreads concurrent retries apart
	retryJitter = 50 * time.Millisecond
)

// RedsyncMutex implements Mutex using the Redlock algorithm over Redis
type RedsyncMutex struct {
	rs         *redsync.Redsync
	tries      int
	retryDelay time.Duration
}

// Option is a function that configures a RedsyncMutex
type Option func(*RedsyncMutex)

// WithTries sets the bounded retry count for lock acquisition
func WithTries(tries int) Option {
	return func(m *RedsyncMutex) {
		m.tries = tries
	}
}

// WithRetryDelay sets the base delay between acquisition attempts
func WithRetryDelay(delay time.Duration) Option {
	return func(m *RedsyncMutex) {
		m.retryDelay = delay
	}
}

// NewRedsyncMutex creates a Redlock-backed mutex over the given Redis client
func NewRedsyncMutex(client redis.UniversalClient, opts ...Option) *RedsyncMutex {
	pool := goredis.NewPool(client)

	m := &RedsyncMutex{
		rs:         redsync.New(pool),
		tries:      DefaultTries,
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// redsyncLock wraps a held redsync mutex
type redsyncLock struct {
	mutex    *redsync.Mutex
	resource string
}

func (l *redsyncLock) Resource() string {
	return l.resource
}

// Acquire obtains the named lock with the given TTL
func (m *RedsyncMutex) Acquire(ctx context.Context, resource string, ttl time.Duration) (Lock, error) {
	delay := m.retryDelay
	mutex := m.rs.NewMutex(resource,
		redsync.WithExpiry(ttl),
		redsync.WithTries(m.tries),
		redsync.WithRetryDelayFunc(func(tries int) time.Duration {
			return delay + time.Duration(rand.Int63n(int64(2*retryJitter))) - retryJitter
		}),
	)

	if err := mutex.LockContext(ctx); err != nil {
		var takenPtr *redsync.ErrTaken
		var taken redsync.ErrTaken
		if errors.As(err, &takenPtr) || errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			return nil, fmt.Errorf("%w: %s", ErrContended, resource)
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", resource, err)
	}

	return &redsyncLock{mutex: mutex, resource: resource}, nil
}

// Release frees the lock
func (m *RedsyncMutex) Release(ctx context.Context, lock Lock) error {
	rl, ok := lock.(*redsyncLock)
	if !ok {
		return fmt.Errorf("lock was not acquired by this mutex")
	}

	ok, err := rl.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", rl.resource, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotHeld, rl.resource)
	}

	return nil
}

// Extend renews the lock for another TTL window.
// Renewal reuses the TTL the lock was acquired with.
func (m *RedsyncMutex) Extend(ctx context.Context, lock Lock) error {
	rl, ok := lock.(*redsyncLock)
	if !ok {
		return fmt.Errorf("lock was not acquired by this mutex")
	}

	ok, err := rl.mutex.ExtendContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to extend lock %s: %w", rl.resource, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotHeld, rl.resource)
	}

	return nil
}
