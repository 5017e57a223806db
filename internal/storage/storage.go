// Package storage defines the Storage contract for bucket storage and the
// SingleValueStore contract for the optional fingerprint->object-id map
// (spec §4.3). Backends live in sibling packages (memstore, redisstore).
package storage

import "context"

// Storage is a multimap of key -> set of string values, used for the
// buckets. The with-id map uses SingleValueStore below instead.
//
// All operations must be idempotent: adding an existing value, or removing
// an absent one, is a no-op rather than an error. Get on an absent key
// returns an empty set, never an error.
//
// Backends document their own atomicity guarantees across concurrent
// callers; the Index's invariants only hold under per-key atomicity
// (spec §5).
type Storage interface {
	// Get returns the set of values stored under key. An absent key
	// returns an empty (non-nil) set.
	Get(ctx context.Context, key string) (map[string]struct{}, error)

	// Add inserts value into the set at key. Idempotent.
	Add(ctx context.Context, key, value string) error

	// Remove deletes value from the set at key. Idempotent, including
	// when key has no set at all.
	Remove(ctx context.Context, key, value string) error

	// Clear drops all state owned by this Storage instance.
	Clear(ctx context.Context) error
}

// SingleValueStore is the narrower contract used for the fingerprint->
// object-id map in with-id mode: at most one value per key, and a later
// Add with the same key overwrites the prior value. Remove takes only the
// key — per spec §9's note on the reference implementation's
// MemoryMapStorage, "at most one id per fingerprint" makes a value
// argument on Remove meaningless, so the Go contract omits it rather than
// accepting and silently ignoring one.
type SingleValueStore interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Add stores value under key, overwriting any prior value.
	Add(ctx context.Context, key, value string) error

	// Remove deletes whatever value is stored under key. Idempotent.
	Remove(ctx context.Context, key string) error

	// Clear drops all state owned by this store.
	Clear(ctx context.Context) error
}
