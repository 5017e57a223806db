package lshindex

import (
	"context"
	"fmt"
	"testing"

	"github.com/lshguard/simhashindex/internal/fingerprint"
	"github.com/lshguard/simhashindex/internal/storage/memstore"
)

func TestNewIdentifiedIndexFromSeeds_AllInserted(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	idMap := memstore.NewIDMap()

	const n = 500
	// Each seed repeats i in all four 16-bit lanes, so any two distinct
	// seeds differ in at least 4 bits (> k=3) and GetOneNearDup can only
	// answer a seed's own fingerprint with that seed.
	seeds := make([]IdentifiedSeed, n)
	for i := 0; i < n; i++ {
		seeds[i] = IdentifiedSeed{
			ObjectID: fmt.Sprintf("doc-%d", i),
			Hash:     fingerprint.FromInt(uint64(i)*0x0001000100010001, 64),
		}
	}

	idx, err := NewIdentifiedIndexFromSeeds(ctx, testConfig(), store, idMap, seeds, 8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < n; i++ {
		fp := fingerprint.FromInt(uint64(i)*0x0001000100010001, 64)
		m, found, err := idx.GetOneNearDup(ctx, fp)
		if err != nil {
			t.Fatal(err)
		}
		if !found || m.ObjectID != fmt.Sprintf("doc-%d", i) {
			t.Fatalf("seed %d not found after batch construction: found=%v match=%v", i, found, m)
		}
	}
}

func TestNewIdentifiedIndexFromSeeds_Empty(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	idMap := memstore.NewIDMap()

	idx, err := NewIdentifiedIndexFromSeeds(ctx, testConfig(), store, idMap, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if idx == nil {
		t.Fatal("expected a non-nil empty index")
	}
}
