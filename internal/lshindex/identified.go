package lshindex

import (
	"context"
	"fmt"

	"github.com/lshguard/simhashindex/internal/fingerprint"
	"github.com/lshguard/simhashindex/internal/storage"
)

// IdentifiedMatch is one near-duplicate hit reported by IdentifiedIndex:
// an application-level object id and its Hamming distance from the query.
type IdentifiedMatch struct {
	ObjectID string
	Distance int
}

// IdentifiedIndex is a near-duplicate index in "with-id" mode (spec §3,
// §4.4): every stored fingerprint is associated with a caller-supplied
// object id via a SingleValueStore side map, so lookups report ids rather
// than raw fingerprints.
type IdentifiedIndex struct {
	core    *core
	hash2id storage.SingleValueStore
}

// NewIdentifiedIndex builds an empty index over store (the bucket backend)
// and idMap (the fingerprint->object-id side map).
func NewIdentifiedIndex(cfg Config, store storage.Storage, idMap storage.SingleValueStore) *IdentifiedIndex {
	return &IdentifiedIndex{core: newCore(cfg, store), hash2id: idMap}
}

// Add inserts fp under objID. A later Add for a fingerprint that already
// exists overwrites its id (spec §3).
func (idx *IdentifiedIndex) Add(ctx context.Context, objID string, fp fingerprint.Fingerprint) error {
	if err := idx.core.checkDimension(fp); err != nil {
		return err
	}
	hex := fp.Hex()
	if err := idx.hash2id.Add(ctx, hex, objID); err != nil {
		return fmt.Errorf("lshindex: add id mapping: %w", err)
	}
	return idx.core.addRaw(ctx, hex, fp)
}

// Remove deletes fp (and its id mapping) from the index.
func (idx *IdentifiedIndex) Remove(ctx context.Context, fp fingerprint.Fingerprint) error {
	if err := idx.core.checkDimension(fp); err != nil {
		return err
	}
	hex := fp.Hex()
	if err := idx.hash2id.Remove(ctx, hex); err != nil {
		return fmt.Errorf("lshindex: remove id mapping: %w", err)
	}
	return idx.core.removeRaw(ctx, hex, fp)
}

// GetOneNearDup returns the first near-duplicate found within tolerance,
// or found=false if none exists. Matches spec/get_one_near_dup's
// short-circuiting scan order.
func (idx *IdentifiedIndex) GetOneNearDup(ctx context.Context, fp fingerprint.Fingerprint) (IdentifiedMatch, bool, error) {
	if err := idx.core.checkDimension(fp); err != nil {
		return IdentifiedMatch{}, false, err
	}
	m, found, err := idx.core.scanFirst(ctx, fp, idx.core.readTh)
	if err != nil || !found {
		return IdentifiedMatch{}, false, err
	}
	return idx.resolve(ctx, m)
}

// GetNearDups returns every distinct near-duplicate within tolerance.
func (idx *IdentifiedIndex) GetNearDups(ctx context.Context, fp fingerprint.Fingerprint) ([]IdentifiedMatch, error) {
	if err := idx.core.checkDimension(fp); err != nil {
		return nil, err
	}
	matches, _, err := idx.core.scanAll(ctx, fp, idx.core.readTh)
	if err != nil {
		return nil, err
	}
	return idx.resolveAll(ctx, matches)
}

// GetNearDupsAndAdd returns every distinct near-duplicate within
// tolerance and, if none of them is an exact duplicate (distance 0),
// inserts fp under curID. This is the probe-and-add operation for
// real-time queries (spec §4.4's get_near_dups_and_add). curID itself is
// never reported back, even when an identical fingerprint is already
// indexed under that id.
func (idx *IdentifiedIndex) GetNearDupsAndAdd(ctx context.Context, curID string, fp fingerprint.Fingerprint) ([]IdentifiedMatch, error) {
	if err := idx.core.checkDimension(fp); err != nil {
		return nil, err
	}
	matches, exact, err := idx.core.scanAll(ctx, fp, idx.core.probeTh)
	if err != nil {
		return nil, err
	}
	resolved, err := idx.resolveAll(ctx, matches)
	if err != nil {
		return nil, err
	}
	resolved = excludeObjectID(resolved, curID)
	if !exact {
		if err := idx.Add(ctx, curID, fp); err != nil {
			return resolved, err
		}
	}
	return resolved, nil
}

// excludeObjectID drops any match reporting curID, so a caller re-probing
// a fingerprint it already owns never sees its own id echoed back.
func excludeObjectID(matches []IdentifiedMatch, curID string) []IdentifiedMatch {
	out := matches[:0]
	for _, m := range matches {
		if m.ObjectID == curID {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (idx *IdentifiedIndex) resolve(ctx context.Context, m match) (IdentifiedMatch, bool, error) {
	id, ok, err := idx.hash2id.Get(ctx, m.hex)
	if err != nil {
		return IdentifiedMatch{}, false, fmt.Errorf("lshindex: resolve id for %s: %w", m.hex, err)
	}
	if !ok {
		// Bucket referenced a fingerprint with no id mapping, a backend
		// inconsistency rather than a normal miss; surfaced as not-found
		// since there's nothing meaningful to report.
		return IdentifiedMatch{}, false, nil
	}
	return IdentifiedMatch{ObjectID: id, Distance: m.distance}, true, nil
}

func (idx *IdentifiedIndex) resolveAll(ctx context.Context, matches []match) ([]IdentifiedMatch, error) {
	out := make([]IdentifiedMatch, 0, len(matches))
	for _, m := range matches {
		resolved, ok, err := idx.resolve(ctx, m)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, resolved)
		}
	}
	return out, nil
}
