// Package bucketkey implements the pigeonhole split: mapping a Fingerprint
// and tolerance k to the k+1 bucket keys that make Hamming-near-neighbor
// lookup sub-linear. Three splits are provided, all satisfying the same
// KeyFunc contract so an Index can be parameterized over any of them.
package bucketkey

import (
	"fmt"
	"strings"

	"github.com/lshguard/simhashindex/internal/fingerprint"
)

// KeyFunc derives the ordered list of bucket keys for a fingerprint under
// tolerance k. The same KeyFunc must be used for insert, lookup, and
// delete against a given backend — key layouts from different KeyFuncs are
// not interchangeable.
type KeyFunc interface {
	// Keys returns the bucket keys for fp under tolerance k, prefixed with
	// prefix. Order is deterministic and is the probe order used by the
	// Index.
	Keys(fp fingerprint.Fingerprint, k int, prefix string) []string
}

// bitString renders fp's value as a zero-padded big-endian bit string of
// length fp.Bits().
func bitString(fp fingerprint.Fingerprint) string {
	bits := fp.Bits()
	var b strings.Builder
	b.Grow(bits)
	v := fp.Value()
	for i := bits - 1; i >= 0; i-- {
		if v&(uint64(1)<<uint(i)) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// evenSplitString partitions s into k+1 parts whose sizes differ by at
// most 1; the first len(s) mod (k+1) parts get the extra element.
func evenSplitString(s string, k int) []string {
	n := len(s)
	parts := k + 1
	quotient, remainder := n/parts, n%parts
	out := make([]string, 0, parts)
	pos := 0
	for i := 0; i < parts; i++ {
		size := quotient
		if i < remainder {
			size++
		}
		out = append(out, s[pos:pos+size])
		pos += size
	}
	return out
}

func binToUint(bin string) uint64 {
	if bin == "" {
		return 0
	}
	var v uint64
	for i := 0; i < len(bin); i++ {
		v <<= 1
		if bin[i] == '1' {
			v |= 1
		}
	}
	return v
}

// bitArithmeticSplit is the "base scheme" of spec §4.2: partition the f bit
// positions into k+1 contiguous chunks of width f/(k+1), the final chunk
// absorbing the leftover high bits. Keys number ascending from 0.
type bitArithmeticSplit struct{}

// BitArithmeticSplit is the base pigeonhole split. Chunk i covers bits
// [offset_i, offset_{i+1}); the final chunk is widened to absorb any
// leftover high bits. Key numbering is ascending from 0.
var BitArithmeticSplit KeyFunc = bitArithmeticSplit{}

func (bitArithmeticSplit) Keys(fp fingerprint.Fingerprint, k int, prefix string) []string {
	f := fp.Bits()
	base := f / (k + 1)
	v := fp.Value()

	keys := make([]string, 0, k+1)
	for i := 0; i <= k; i++ {
		offset := base * i
		var width int
		if i == k {
			width = f - offset
		} else {
			width = base
		}
		var mask uint64
		if width >= 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << uint(width)) - 1
		}
		chunk := (v >> uint(offset)) & mask
		keys = append(keys, fmt.Sprintf("%s%x:%d", prefix, chunk, i))
	}
	return keys
}

// evenSplit partitions the fingerprint's bit string (big-endian) into k+1
// parts differing in size by at most 1. It reproduces the legacy
// descending chunk-index numbering (k-idx) documented in spec §9 as a
// compatibility wart, not a design requirement — new callers with no
// interop need should prefer BitArithmeticSplit.
type evenSplit struct{}

// EvenSplit is the string-partition pigeonhole split. Chunk index in the
// emitted key runs k, k-1, ..., 0 (descending) to match the legacy
// numbering of the system this engine supersedes; it is not interchangeable
// with BitArithmeticSplit's ascending numbering against the same storage.
var EvenSplit KeyFunc = evenSplit{}

func (evenSplit) Keys(fp fingerprint.Fingerprint, k int, prefix string) []string {
	bits := bitString(fp)
	parts := evenSplitString(bits, k)

	keys := make([]string, len(parts))
	for idx, part := range parts {
		keys[idx] = fmt.Sprintf("%s%x:%d", prefix, binToUint(part), k-idx)
	}
	return keys
}

// twoLevelSplit applies EvenSplit to each first-level chunk, then
// even-splits the concatenation of the remaining k chunks again, emitting
// (k+1)*(k+1) keys. It trades write amplification for tighter effective
// recall, per spec §4.2.
type twoLevelSplit struct{}

// TwoLevelSplit is the two-level pigeonhole split: (k+1)*(k+1) keys per
// fingerprint, each of the form "<hex(c)>:<idx1>:<hex(sub)>:<idx2>".
var TwoLevelSplit KeyFunc = twoLevelSplit{}

func (twoLevelSplit) Keys(fp fingerprint.Fingerprint, k int, prefix string) []string {
	bits := bitString(fp)
	first := evenSplitString(bits, k)

	keys := make([]string, 0, (k+1)*(k+1))
	for idx1, c := range first {
		var rest strings.Builder
		for j, other := range first {
			if j == idx1 {
				continue
			}
			rest.WriteString(other)
		}
		sub := evenSplitString(rest.String(), k)
		for idx2, s := range sub {
			keys = append(keys, fmt.Sprintf("%s%x:%d:%x:%d",
				prefix, binToUint(c), idx1, binToUint(s), idx2))
		}
	}
	return keys
}
