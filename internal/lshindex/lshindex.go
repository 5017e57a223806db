// Package lshindex composes a bucketkey.KeyFunc and a storage.Storage into
// the near-duplicate index itself, grounded on the reference
// implementation's SimhashIndex (add/remove/get_one_near_dup/get_near_dups/
// get_near_dups2). The index holds no lock of its own; concurrent callers
// get whatever per-key atomicity the Storage backend provides.
package lshindex

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/lshguard/simhashindex/internal/bucketkey"
	"github.com/lshguard/simhashindex/internal/fingerprint"
	"github.com/lshguard/simhashindex/internal/storage"
)

// DefaultReadThreshold is the bucket size above which a read-only lookup
// logs a hot-bucket warning.
const DefaultReadThreshold = 2000

// DefaultProbeThreshold is the bucket size above which a probe-and-add
// lookup logs a hot-bucket warning. It is higher than DefaultReadThreshold
// because GetNearDupsAndAdd is expected on the write-heavy path, where the
// same buckets are scanned far more often.
const DefaultProbeThreshold = 3000

// DefaultTolerance is the default Hamming-distance tolerance k.
const DefaultTolerance = 7

// Config parameterizes an Index. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// F is the fingerprint dimension. Must match every Fingerprint passed
	// to Add/Remove/lookup operations.
	F int

	// K is the Hamming-distance tolerance.
	K int

	// KeyFunc derives bucket keys from a fingerprint. Must stay fixed for
	// the lifetime of a given backend: switching KeyFunc invalidates
	// previously written keys.
	KeyFunc bucketkey.KeyFunc

	// Prefix namespaces bucket keys, letting one Storage back multiple
	// indexes without key collisions.
	Prefix string

	// Logger receives INFO progress lines and WARNING hot-bucket
	// diagnostics. A nil Logger disables logging.
	Logger *log.Logger

	// ReadThreshold and ProbeThreshold override the hot-bucket diagnostic
	// thresholds. Zero means "use the package default".
	ReadThreshold  int
	ProbeThreshold int
}

// DefaultConfig returns a Config with the reference implementation's
// defaults: f=64, k=7, the base bit-arithmetic split, no prefix, and a
// logger writing to stderr.
func DefaultConfig() Config {
	return Config{
		F:              fingerprint.DefaultBits,
		K:              DefaultTolerance,
		KeyFunc:        bucketkey.BitArithmeticSplit,
		Prefix:         "",
		Logger:         log.New(os.Stderr, "simhashindex: ", log.LstdFlags),
		ReadThreshold:  DefaultReadThreshold,
		ProbeThreshold: DefaultProbeThreshold,
	}
}

func (c Config) readThreshold() int {
	if c.ReadThreshold > 0 {
		return c.ReadThreshold
	}
	return DefaultReadThreshold
}

func (c Config) probeThreshold() int {
	if c.ProbeThreshold > 0 {
		return c.ProbeThreshold
	}
	return DefaultProbeThreshold
}

// core holds the bucket-scanning logic shared by IdentifiedIndex and
// AnonymousIndex. Both report fingerprints that differ by at most k bits;
// they differ only in whether a match is reported as an object id (via a
// SingleValueStore side map) or as the raw fingerprint hex.
type core struct {
	storage storage.Storage
	keyFunc bucketkey.KeyFunc
	f       int
	k       int
	prefix  string
	log     *log.Logger
	readTh  int
	probeTh int
}

func newCore(cfg Config, store storage.Storage) *core {
	f := cfg.F
	if f <= 0 {
		f = fingerprint.DefaultBits
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = bucketkey.BitArithmeticSplit
	}
	return &core{
		storage: store,
		keyFunc: keyFunc,
		f:       f,
		k:       cfg.K,
		prefix:  cfg.Prefix,
		log:     cfg.Logger,
		readTh:  cfg.readThreshold(),
		probeTh: cfg.probeThreshold(),
	}
}

func (c *core) logf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Printf(format, args...)
	}
}

func (c *core) checkDimension(fp fingerprint.Fingerprint) error {
	if fp.Bits() != c.f {
		return &fingerprint.DimensionMismatchError{Expected: c.f, Actual: fp.Bits()}
	}
	return nil
}

func (c *core) keys(fp fingerprint.Fingerprint) []string {
	return c.keyFunc.Keys(fp, c.k, c.prefix)
}

// match is one (fingerprint hex, distance) hit from a bucket scan.
type match struct {
	hex      string
	distance int
}

// sortedHexes orders a bucket's members deterministically. Go randomizes
// map iteration order on every run, which would make GetOneNearDup's
// "first candidate within tolerance" and GetNearDups' result order
// non-reproducible across runs against the same backend state; sorting
// the hex keys fixes a stable, backend-independent probe order.
func sortedHexes(dups map[string]struct{}) []string {
	hexes := make([]string, 0, len(dups))
	for hex := range dups {
		hexes = append(hexes, hex)
	}
	sort.Strings(hexes)
	return hexes
}

// scanFirst returns the first bucket hit within tolerance, in key-then-
// bucket-member order, matching get_one_near_dup's early return.
func (c *core) scanFirst(ctx context.Context, fp fingerprint.Fingerprint, hotThreshold int) (match, bool, error) {
	for _, key := range c.keys(fp) {
		dups, err := c.storage.Get(ctx, key)
		if err != nil {
			return match{}, false, fmt.Errorf("lshindex: get bucket %s: %w", key, err)
		}
		if len(dups) > hotThreshold {
			c.logf("WARNING hot bucket key=%s size=%d", key, len(dups))
		}
		for _, hex := range sortedHexes(dups) {
			dup, err := fingerprint.FromHex(hex, c.f)
			if err != nil {
				return match{}, false, fmt.Errorf("lshindex: corrupt bucket member %q: %w", hex, err)
			}
			d := fingerprint.MustDistance(fp, dup)
			if d <= c.k {
				return match{hex: hex, distance: d}, true, nil
			}
		}
	}
	return match{}, false, nil
}

// scanAll returns every distinct bucket hit within tolerance, deduplicated
// by fingerprint hex, matching get_near_dups. exactFound reports whether
// any hit was an exact duplicate (distance 0), used by probe-and-add.
func (c *core) scanAll(ctx context.Context, fp fingerprint.Fingerprint, hotThreshold int) (matches []match, exactFound bool, err error) {
	seen := make(map[string]struct{})

	for _, key := range c.keys(fp) {
		dups, gerr := c.storage.Get(ctx, key)
		if gerr != nil {
			return nil, false, fmt.Errorf("lshindex: get bucket %s: %w", key, gerr)
		}
		if len(dups) > hotThreshold {
			c.logf("WARNING hot bucket key=%s size=%d", key, len(dups))
		}
		for _, hex := range sortedHexes(dups) {
			if _, dup := seen[hex]; dup {
				continue
			}
			dupFp, ferr := fingerprint.FromHex(hex, c.f)
			if ferr != nil {
				return nil, false, fmt.Errorf("lshindex: corrupt bucket member %q: %w", hex, ferr)
			}
			d := fingerprint.MustDistance(fp, dupFp)
			if d <= c.k {
				seen[hex] = struct{}{}
				matches = append(matches, match{hex: hex, distance: d})
				if d == 0 {
					exactFound = true
				}
			}
		}
	}
	return matches, exactFound, nil
}

func (c *core) addRaw(ctx context.Context, hex string, fp fingerprint.Fingerprint) error {
	for _, key := range c.keys(fp) {
		if err := c.storage.Add(ctx, key, hex); err != nil {
			return fmt.Errorf("lshindex: add to bucket %s: %w", key, err)
		}
	}
	return nil
}

func (c *core) removeRaw(ctx context.Context, hex string, fp fingerprint.Fingerprint) error {
	for _, key := range c.keys(fp) {
		if err := c.storage.Remove(ctx, key, hex); err != nil {
			return fmt.Errorf("lshindex: remove from bucket %s: %w", key, err)
		}
	}
	return nil
}
