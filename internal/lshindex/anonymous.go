package lshindex

import (
	"context"

	"github.com/lshguard/simhashindex/internal/fingerprint"
	"github.com/lshguard/simhashindex/internal/storage"
)

// AnonymousMatch is one near-duplicate hit reported by AnonymousIndex: the
// matched fingerprint itself and its Hamming distance from the query.
type AnonymousMatch struct {
	Fingerprint fingerprint.Fingerprint
	Distance    int
}

// AnonymousIndex is a near-duplicate index in "without-id" mode (spec §3,
// §4.4): it has no side map and reports matches as raw fingerprints. Use
// this when the caller already has its own id->fingerprint association, or
// when fingerprints alone are meaningful (e.g. dedup-only pipelines).
type AnonymousIndex struct {
	core *core
}

// NewAnonymousIndex builds an empty index over store.
func NewAnonymousIndex(cfg Config, store storage.Storage) *AnonymousIndex {
	return &AnonymousIndex{core: newCore(cfg, store)}
}

// Add inserts fp into the index.
func (idx *AnonymousIndex) Add(ctx context.Context, fp fingerprint.Fingerprint) error {
	if err := idx.core.checkDimension(fp); err != nil {
		return err
	}
	return idx.core.addRaw(ctx, fp.Hex(), fp)
}

// Remove deletes fp from the index.
func (idx *AnonymousIndex) Remove(ctx context.Context, fp fingerprint.Fingerprint) error {
	if err := idx.core.checkDimension(fp); err != nil {
		return err
	}
	return idx.core.removeRaw(ctx, fp.Hex(), fp)
}

// GetOneNearDup returns the first near-duplicate found within tolerance.
func (idx *AnonymousIndex) GetOneNearDup(ctx context.Context, fp fingerprint.Fingerprint) (AnonymousMatch, bool, error) {
	if err := idx.core.checkDimension(fp); err != nil {
		return AnonymousMatch{}, false, err
	}
	m, found, err := idx.core.scanFirst(ctx, fp, idx.core.readTh)
	if err != nil || !found {
		return AnonymousMatch{}, false, err
	}
	return toAnonymousMatch(m, idx.core.f)
}

// GetNearDups returns every distinct near-duplicate within tolerance.
func (idx *AnonymousIndex) GetNearDups(ctx context.Context, fp fingerprint.Fingerprint) ([]AnonymousMatch, error) {
	if err := idx.core.checkDimension(fp); err != nil {
		return nil, err
	}
	matches, _, err := idx.core.scanAll(ctx, fp, idx.core.readTh)
	if err != nil {
		return nil, err
	}
	return toAnonymousMatches(matches, idx.core.f)
}

// GetNearDupsAndAdd returns every distinct near-duplicate within tolerance
// and inserts fp if none of them is an exact duplicate.
func (idx *AnonymousIndex) GetNearDupsAndAdd(ctx context.Context, fp fingerprint.Fingerprint) ([]AnonymousMatch, error) {
	if err := idx.core.checkDimension(fp); err != nil {
		return nil, err
	}
	matches, exact, err := idx.core.scanAll(ctx, fp, idx.core.probeTh)
	if err != nil {
		return nil, err
	}
	out, err := toAnonymousMatches(matches, idx.core.f)
	if err != nil {
		return nil, err
	}
	if !exact {
		if err := idx.Add(ctx, fp); err != nil {
			return out, err
		}
	}
	return out, nil
}

func toAnonymousMatch(m match, bits int) (AnonymousMatch, bool, error) {
	fp, err := fingerprint.FromHex(m.hex, bits)
	if err != nil {
		return AnonymousMatch{}, false, err
	}
	return AnonymousMatch{Fingerprint: fp, Distance: m.distance}, true, nil
}

func toAnonymousMatches(matches []match, bits int) ([]AnonymousMatch, error) {
	out := make([]AnonymousMatch, 0, len(matches))
	for _, m := range matches {
		am, _, err := toAnonymousMatch(m, bits)
		if err != nil {
			return nil, err
		}
		out = append(out, am)
	}
	return out, nil
}
