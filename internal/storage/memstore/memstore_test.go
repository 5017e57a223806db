package memstore

import (
	"context"
	"testing"
)

func TestStore_AddGetRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty set for absent key, got %v", got)
	}

	if err := s.Add(ctx, "k1", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "k1", "v2"); err != nil {
		t.Fatal(err)
	}

	got, _ = s.Get(ctx, "k1")
	if len(got) != 2 {
		t.Errorf("expected 2 values, got %d", len(got))
	}

	if err := s.Remove(ctx, "k1", "v1"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "k1")
	if len(got) != 1 {
		t.Errorf("expected 1 value after remove, got %d", len(got))
	}
	if _, ok := got["v2"]; !ok {
		t.Error("expected v2 to remain")
	}
}

func TestStore_AddIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.Add(ctx, "k", "v")
	_ = s.Add(ctx, "k", "v")

	got, _ := s.Get(ctx, "k")
	if len(got) != 1 {
		t.Errorf("adding the same value twice should not duplicate it, got %d entries", len(got))
	}
}

func TestStore_RemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	// removing from a key that was never added must not error
	if err := s.Remove(ctx, "absent", "v"); err != nil {
		t.Fatalf("remove on absent key should be a no-op, got error: %v", err)
	}

	_ = s.Add(ctx, "k", "v")
	_ = s.Remove(ctx, "k", "v")
	// removing again must still be a no-op
	if err := s.Remove(ctx, "k", "v"); err != nil {
		t.Fatalf("repeat remove should be a no-op, got error: %v", err)
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.Add(ctx, "k1", "v1")
	_ = s.Add(ctx, "k2", "v2")

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, "k1")
	if len(got) != 0 {
		t.Error("expected empty store after Clear")
	}
}

func TestIDMap_AddOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewIDMap()

	_ = m.Add(ctx, "hex1", "obj-a")
	v, ok, err := m.Get(ctx, "hex1")
	if err != nil || !ok || v != "obj-a" {
		t.Fatalf("got (%s, %v, %v), want (obj-a, true, nil)", v, ok, err)
	}

	_ = m.Add(ctx, "hex1", "obj-b")
	v, ok, _ = m.Get(ctx, "hex1")
	if !ok || v != "obj-b" {
		t.Errorf("later add should overwrite, got %s", v)
	}
}

func TestIDMap_RemoveByKeyOnly(t *testing.T) {
	ctx := context.Background()
	m := NewIDMap()

	_ = m.Add(ctx, "hex1", "obj-a")
	if err := m.Remove(ctx, "hex1"); err != nil {
		t.Fatal(err)
	}

	_, ok, _ := m.Get(ctx, "hex1")
	if ok {
		t.Error("expected entry to be gone after Remove")
	}

	// idempotent on absent key
	if err := m.Remove(ctx, "hex1"); err != nil {
		t.Fatalf("repeat remove should be a no-op, got error: %v", err)
	}
}
