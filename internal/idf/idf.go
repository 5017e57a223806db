// Package idf loads token->weight dictionaries used to scale feature
// weights before they go into fingerprint.Builder, the concrete reference
// implementation of the "tokenizer + IDF" external collaborator spec §6
// leaves out of the core's scope. Grounded on the reference
// implementation's write_idf_dic/load_idf_dic flat-file round-trip, plus a
// JSON variant built on the teacher's gjson dependency.
package idf

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultWeight is applied to any token absent from the dictionary,
// matching the reference implementation's `idf_dic.get(i, 5)`.
const DefaultWeight = 5.0

// Dictionary is a token->IDF-weight lookup.
type Dictionary map[string]float64

// Weight returns d's weight for token, or DefaultWeight if token is absent.
func (d Dictionary) Weight(token string) float64 {
	if w, ok := d[token]; ok {
		return w
	}
	return DefaultWeight
}

// LoadFlatFile reads a dictionary in the reference implementation's
// "word weight" per-line text format. A malformed line is skipped rather
// than aborting the whole load, matching load_idf_dic's tolerant
// try/except-and-continue-on-failure behavior (the original falls back to
// an empty dict only on total failure; here a line-level problem doesn't
// lose the rest of the file).
func LoadFlatFile(path string) (Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("idf: open %s: %w", path, err)
	}
	defer f.Close()

	dict := make(Dictionary)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		dict[parts[0]] = weight
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("idf: read %s: %w", path, err)
	}
	return dict, nil
}

// WriteFlatFile writes d in the same "word weight" format LoadFlatFile
// reads, mirroring write_idf_dic.
func WriteFlatFile(path string, d Dictionary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("idf: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for token, weight := range d {
		if _, err := fmt.Fprintf(w, "%s %v\n", token, weight); err != nil {
			return fmt.Errorf("idf: write %s: %w", path, err)
		}
	}
	return w.Flush()
}

// LoadJSON reads a dictionary from a flat JSON object mapping token to
// numeric weight, e.g. {"the": 1.2, "quick": 3.4}. Unlike LoadFlatFile this
// format survives tokens containing spaces.
func LoadJSON(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("idf: open %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("idf: %s is not valid JSON", path)
	}

	dict := make(Dictionary)
	var parseErr error
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		if value.Type.String() != "Number" {
			parseErr = fmt.Errorf("idf: %s: weight for %q is not numeric", path, key.String())
			return false
		}
		dict[key.String()] = value.Float()
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return dict, nil
}
