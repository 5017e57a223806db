// Package redisstore is the Redis-backed Storage implementation, grounded on
// the reference implementation's RedisStorage (SADD/SREM/SMEMBERS plus a
// bucket_keys meta-set for bulk expiry) and on algrv-server's
// internal/ccsignals/redis_store.go for client construction and pipeline
// idiom, since the teacher itself has no Redis client.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lshguard/simhashindex/internal/storage"
)

// DefaultExpire matches the reference implementation's default bucket TTL
// of seven days, refreshed on every Add.
const DefaultExpire = 7 * 24 * time.Hour

// DefaultKeysKey is the name of the meta-set tracking every bucket key ever
// written, used by Clear to find what to expire in bulk.
const DefaultKeysKey = "bucket_keys"

// Store is a Redis-backed Storage. Each bucket key maps to a Redis set; a
// side meta-set (KeysKey) records every bucket key that has ever been
// written so Clear can sweep them without a KEYS scan.
type Store struct {
	client  *redis.Client
	expire  time.Duration
	keysKey string
}

// Option configures a Store.
type Option func(*Store)

// WithExpire overrides the TTL applied to a bucket key on every Add.
func WithExpire(d time.Duration) Option {
	return func(s *Store) { s.expire = d }
}

// WithKeysKey overrides the name of the meta-set used to track bucket keys.
func WithKeysKey(key string) Option {
	return func(s *Store) { s.keysKey = key }
}

// New wraps an existing *redis.Client as a Storage backend.
func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client:  client,
		expire:  DefaultExpire,
		keysKey: DefaultKeysKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromURL parses a redis:// URL, dials, and pings before returning, the
// same fail-fast pattern algrv-server uses to construct its Redis client.
func NewFromURL(ctx context.Context, redisURL string, opts ...Option) (*Store, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redisstore: parse url: %w", err)
	}

	client := redis.NewClient(parsed)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redisstore: connect: %w", err)
	}

	return New(client, opts...), nil
}

var _ storage.Storage = (*Store)(nil)

// Get returns the set of values stored under key.
func (s *Store) Get(ctx context.Context, key string) (map[string]struct{}, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: smembers %s: %w", key, err)
	}
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

// Add inserts value into the set at key, refreshes the bucket's TTL, and
// records key in the meta-set so it is reachable from Clear.
func (s *Store) Add(ctx context.Context, key, value string) error {
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, key, value)
	pipe.Expire(ctx, key, s.expire)
	pipe.SAdd(ctx, s.keysKey, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore: add %s: %w", key, err)
	}
	return nil
}

// Remove deletes value from the set at key. Idempotent: SREM on a missing
// member or missing key is a no-op in Redis.
func (s *Store) Remove(ctx context.Context, key, value string) error {
	if err := s.client.SRem(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("redisstore: srem %s: %w", key, err)
	}
	return nil
}

// Clear deletes (DEL) every bucket key recorded in the meta-set, then the
// meta-set itself, in one pipelined round trip.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, s.keysKey).Result()
	if err != nil {
		return fmt.Errorf("redisstore: smembers %s: %w", s.keysKey, err)
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, s.keysKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore: clear: %w", err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
