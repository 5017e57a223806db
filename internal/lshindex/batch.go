package lshindex

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/lshguard/simhashindex/internal/fingerprint"
	"github.com/lshguard/simhashindex/internal/storage"
)

// BatchPoolSize is the default worker count for batch construction,
// matching the teacher's DefaultWorkerPoolOptions.Size.
const BatchPoolSize = 100

// batchProgressEvery mirrors the reference implementation's initial-load
// log cadence ("if i %% 10000 == 0 or i == count-1").
const batchProgressEvery = 10000

// IdentifiedSeed is one (object id, fingerprint) pair for initial batch
// construction of an IdentifiedIndex.
type IdentifiedSeed struct {
	ObjectID string
	Hash     fingerprint.Fingerprint
}

// NewIdentifiedIndexFromSeeds builds an index and inserts every seed
// concurrently through a bounded ants.Pool, logging progress every 10,000
// items the way the reference implementation's constructor does for its
// initial objs list. poolSize <= 0 uses BatchPoolSize.
//
// The first error encountered aborts submission of further items and is
// returned once already-submitted work drains; partial inserts made before
// the error may remain in store.
func NewIdentifiedIndexFromSeeds(ctx context.Context, cfg Config, store storage.Storage, idMap storage.SingleValueStore, seeds []IdentifiedSeed, poolSize int) (*IdentifiedIndex, error) {
	idx := NewIdentifiedIndex(cfg, store, idMap)
	if len(seeds) == 0 {
		return idx, nil
	}
	if poolSize <= 0 {
		poolSize = BatchPoolSize
	}

	idx.core.logf("INFO initializing %d items", len(seeds))

	pool, err := ants.NewPool(poolSize, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("lshindex: create batch pool: %w", err)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		completed int64
	)
	total := len(seeds)

	for i, seed := range seeds {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}
		i, seed := i, seed
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := idx.Add(ctx, seed.ObjectID, seed.Hash); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("lshindex: batch add index %d: %w", i, err)
				}
				mu.Unlock()
			}
			done := atomic.AddInt64(&completed, 1)
			if done%batchProgressEvery == 0 || int(done) == total {
				idx.core.logf("INFO %d/%d", done, total)
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("lshindex: submit batch item %d: %w", i, submitErr)
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return idx, nil
}
