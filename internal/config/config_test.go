package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Index.F != 64 {
		t.Errorf("F = %d, want 64", cfg.Index.F)
	}
	if cfg.Index.K != 7 {
		t.Errorf("K = %d, want 7", cfg.Index.K)
	}
	if cfg.Backend.Type != "memory" {
		t.Errorf("Backend.Type = %q, want memory", cfg.Backend.Type)
	}
}

func TestLoad_OverridesDefaultsPartially(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "index:\n  k: 3\n  key_func: even\nbackend:\n  type: memory\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Index.K != 3 {
		t.Errorf("K = %d, want 3 (overridden)", cfg.Index.K)
	}
	if cfg.Index.F != 64 {
		t.Errorf("F = %d, want 64 (untouched default)", cfg.Index.F)
	}
	if cfg.Index.KeyFunc != "even" {
		t.Errorf("KeyFunc = %q, want even", cfg.Index.KeyFunc)
	}
}

func TestIndexConfig_KeyFunc_UnknownIsError(t *testing.T) {
	c := IndexConfig{KeyFunc: "nonsense"}
	if _, err := c.ResolveKeyFunc(); err == nil {
		t.Fatal("expected an error for unknown key_func")
	}
}

func TestIndexConfig_KeyFunc_ResolvesKnownNames(t *testing.T) {
	for _, name := range []string{"", "bit-arithmetic", "even", "two-level"} {
		c := IndexConfig{KeyFunc: name}
		if _, err := c.ResolveKeyFunc(); err != nil {
			t.Errorf("ResolveKeyFunc(%q) returned error: %v", name, err)
		}
	}
}

func TestBuildStorage_Memory(t *testing.T) {
	cfg := DefaultConfig()
	store, idMap, closeFn, err := cfg.BuildStorage(nil)
	if err != nil {
		t.Fatal(err)
	}
	if store == nil {
		t.Fatal("expected a non-nil memory Storage")
	}
	if idMap == nil {
		t.Fatal("expected a non-nil id map since WithID defaults to true")
	}
	if err := closeFn(); err != nil {
		t.Errorf("unexpected error closing memory backend: %v", err)
	}
}
