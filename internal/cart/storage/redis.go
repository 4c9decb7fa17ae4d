package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/harborlane/storefront-backend/internal/cart"
	redisclient "github.com/harborlane/storefront-backend/pkg/redis"
)

type redisKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisStore keeps each session's line list as a JSON blob under a namespaced
// key, TTL-bound so abandoned carts age out.
type RedisStore struct {
	kv  redisKV
	ttl time.Duration
}

// NewRedisStore builds the production cart storage backend.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{kv: client, ttl: ttl}, nil
}

// Load returns the persisted lines, or (nil, nil) for an unknown session.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]cart.Line, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	var lines []cart.Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return lines, nil
}

// Save serializes the line list under the session's cart key.
func (s *RedisStore) Save(ctx context.Context, sessionID string, lines []cart.Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	return s.kv.Set(ctx, s.kv.CartKey(sessionID), string(payload), s.ttl)
}

// Delete removes the session's cart record entirely.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.kv.Del(ctx, s.kv.CartKey(sessionID))
}
