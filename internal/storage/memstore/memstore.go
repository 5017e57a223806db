// Package memstore is the in-memory Storage backend: a mutex-guarded map of
// bucket-key to value set, grounded on the reference implementation's
// MemoryStorage (a defaultdict(set)) and on the teacher's
// internal/cache/memory.go mutex-guarded-map idiom. No third-party
// concurrent-map library appears anywhere in the retrieved pack for this
// shape; stdlib sync.RWMutex plus a map is the teacher's own convention for
// an in-memory cache.
package memstore

import (
	"context"
	"sync"

	"github.com/lshguard/simhashindex/internal/storage"
)

// Store is an in-memory Storage backend. The zero value is not usable; use
// New. Safe for concurrent use by multiple goroutines — each operation
// holds the store's lock for its own key-set mutation, matching spec §5's
// requirement of per-key atomicity.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]struct{}
}

// New creates an empty in-memory Storage backend.
func New() *Store {
	return &Store{buckets: make(map[string]map[string]struct{})}
}

var _ storage.Storage = (*Store)(nil)

// Get returns a snapshot copy of the set stored at key.
func (s *Store) Get(_ context.Context, key string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, ok := s.buckets[key]
	if !ok {
		return map[string]struct{}{}, nil
	}
	out := make(map[string]struct{}, len(bucket))
	for v := range bucket {
		out[v] = struct{}{}
	}
	return out, nil
}

// Add inserts value into the set at key, creating the bucket lazily.
func (s *Store) Add(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[key]
	if !ok {
		bucket = make(map[string]struct{})
		s.buckets[key] = bucket
	}
	bucket[value] = struct{}{}
	return nil
}

// Remove deletes value from the set at key. A missing key or missing value
// is a no-op. The now-empty bucket is dropped so iteration/size stay
// accurate, matching spec §3's "may be removed when empty".
func (s *Store) Remove(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[key]
	if !ok {
		return nil
	}
	delete(bucket, value)
	if len(bucket) == 0 {
		delete(s.buckets, key)
	}
	return nil
}

// Clear drops all buckets.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[string]map[string]struct{})
	return nil
}
