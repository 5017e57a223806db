package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lshguard/simhashindex/internal/storage"
)

// IDMap is the Redis-backed SingleValueStore for the fingerprint->object-id
// map in with-id mode. Each fingerprint key maps to a plain Redis string
// value rather than a set, since at most one id is ever stored per key.
type IDMap struct {
	client *redis.Client
	prefix string
}

// NewIDMap wraps client as a SingleValueStore. keyPrefix namespaces the
// string keys so an id map can share a Redis database with bucket Stores
// without colliding on fingerprint hex strings.
func NewIDMap(client *redis.Client, keyPrefix string) *IDMap {
	return &IDMap{client: client, prefix: keyPrefix}
}

var _ storage.SingleValueStore = (*IDMap)(nil)

func (m *IDMap) key(k string) string {
	return m.prefix + k
}

// Get returns the object id stored under key.
func (m *IDMap) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := m.client.Get(ctx, m.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return v, true, nil
}

// Add stores value under key, overwriting any prior entry.
func (m *IDMap) Add(ctx context.Context, key, value string) error {
	if err := m.client.Set(ctx, m.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", key, err)
	}
	return nil
}

// Remove deletes whatever id is stored under key. Idempotent.
func (m *IDMap) Remove(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.key(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: del %s: %w", key, err)
	}
	return nil
}

// Clear drops every key under this map's prefix by scanning for them.
// Intended for test/maintenance use; with-id maps are not expected to
// share a database-wide flush in production.
func (m *IDMap) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := m.client.Scan(ctx, cursor, m.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redisstore: scan: %w", err)
		}
		if len(keys) > 0 {
			if err := m.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redisstore: clear del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}
