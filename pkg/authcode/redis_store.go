package authcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "authorization_code:"

// RedisStore implements Store backed by Redis. Codes are stored as JSON
// payloads whose key TTL equals the code expiry, so expired codes vanish
// without a cleanup pass.
type RedisStore struct {
	client redis.UniversalClient
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore constructs a Redis-backed authorization code store
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Create stores a new authorization code with TTL derived from its expiry
func (s *RedisStore) Create(ctx context.Context, code *AuthorizationCode) error {
	if code == nil {
		return errors.New("authorization code cannot be nil")
	}
	if code.Code == "" {
		return errors.New("authorization code cannot be empty")
	}

	ttl := time.Until(code.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("authorization code already expired")
	}

	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("marshal authorization code: %w", err)
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+code.Code, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("persist authorization code: %w", err)
	}
	if !ok {
		return fmt.Errorf("authorization code already exists: %s", code.Code)
	}

	return nil
}

// Get retrieves an authorization code by its value
func (s *RedisStore) Get(ctx context.Context, code string) (*AuthorizationCode, error) {
	if code == "" {
		return nil, errors.New("authorization code cannot be empty")
	}

	bytes, err := s.client.Get(ctx, keyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load authorization code: %w", err)
	}

	var authCode AuthorizationCode
	if err := json.Unmarshal(bytes, &authCode); err != nil {
		return nil, fmt.Errorf("decode authorization code: %w", err)
	}

	return &authCode, nil
}

// Delete removes an authorization code
func (s *RedisStore) Delete(ctx context.Context, code string) error {
	if code == "" {
		return errors.New("authorization code cannot be empty")
	}

	deleted, err := s.client.Del(ctx, keyPrefix+code).Result()
	if err != nil {
		return fmt.Errorf("delete authorization code: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	return nil
}
