package memstore

import (
	"context"
	"sync"

	"github.com/lshguard/simhashindex/internal/storage"
)

// IDMap is the in-memory SingleValueStore backend for the fingerprint->
// object-id map in with-id mode. Grounded on the reference
// implementation's MemoryMapStorage, which stores obj_id by hex
// fingerprint key and (per spec §9) ignores any value passed to remove,
// dropping by key alone — this Go contract makes that explicit by not
// accepting a value parameter on Remove at all.
type IDMap struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewIDMap creates an empty in-memory fingerprint->id map.
func NewIDMap() *IDMap {
	return &IDMap{data: make(map[string]string)}
}

var _ storage.SingleValueStore = (*IDMap)(nil)

// Get returns the object id stored under the hex fingerprint key.
func (m *IDMap) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Add stores value under key, overwriting any prior entry for the same
// fingerprint (spec §3: "a later insert with the same fingerprint
// overwrites").
func (m *IDMap) Add(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes whatever id is stored under key. No-op if absent.
func (m *IDMap) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Clear drops all entries.
func (m *IDMap) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}
