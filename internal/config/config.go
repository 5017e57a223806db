// Package config loads the YAML configuration that parameterizes an Index
// and its Storage backend, following the teacher's Config/DefaultConfig
// shape (internal/config/config.go) and its yaml.Unmarshal loading idiom
// (internal/scenario/parser.go).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level document for `simhashindex` CLI invocations and
// for any program that wants to build an Index from a file.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Backend BackendConfig `yaml:"backend"`
}

// IndexConfig configures the Index itself: dimension, tolerance, key
// derivation scheme, and the hot-bucket diagnostic thresholds.
type IndexConfig struct {
	// F is the fingerprint dimension.
	F int `yaml:"f"`

	// K is the Hamming-distance tolerance.
	K int `yaml:"k"`

	// KeyFunc selects the pigeonhole split: "bit-arithmetic", "even", or
	// "two-level".
	KeyFunc string `yaml:"key_func"`

	// Prefix namespaces bucket keys for multi-corpus sharing of one
	// backend.
	Prefix string `yaml:"prefix"`

	// WithID selects IdentifiedIndex (true) or AnonymousIndex (false).
	WithID bool `yaml:"with_id"`

	// ReadThreshold and ProbeThreshold override the hot-bucket warning
	// thresholds; 0 means use the package defaults.
	ReadThreshold  int `yaml:"read_threshold"`
	ProbeThreshold int `yaml:"probe_threshold"`
}

// BackendConfig selects and configures the Storage implementation.
type BackendConfig struct {
	// Type is "memory" or "redis".
	Type  string      `yaml:"type"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis-backed Storage and id-map backends.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
}

// DefaultConfig returns the reference implementation's defaults: f=64,
// k=7, the base bit-arithmetic split, with-id mode on, in-memory storage.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			F:              64,
			K:              7,
			KeyFunc:        "bit-arithmetic",
			WithID:         true,
			ReadThreshold:  2000,
			ProbeThreshold: 3000,
		},
		Backend: BackendConfig{
			Type: "memory",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				TTL:       7 * 24 * time.Hour,
				KeyPrefix: "",
			},
		},
	}
}

// Load reads and parses a YAML config file, starting from DefaultConfig so
// an omitted field keeps its default rather than zeroing out.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
