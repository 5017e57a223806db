package idf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWeight_DefaultsForUnknownToken(t *testing.T) {
	d := Dictionary{"known": 2.5}
	if got := d.Weight("known"); got != 2.5 {
		t.Errorf("Weight(known) = %v, want 2.5", got)
	}
	if got := d.Weight("unknown"); got != DefaultWeight {
		t.Errorf("Weight(unknown) = %v, want %v", got, DefaultWeight)
	}
}

func TestFlatFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idf.txt")

	want := Dictionary{"the": 1.5, "quick": 3.25, "fox": 9}
	if err := WriteFlatFile(path, want); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFlatFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for token, weight := range want {
		if got[token] != weight {
			t.Errorf("token %q: got %v, want %v", token, got[token], weight)
		}
	}
}

func TestLoadFlatFile_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idf.txt")
	content := "good 1.0\nmalformed\nbad notanumber\nother 2.0\n"
	if err := writeFile(path, content); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFlatFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 well-formed entries, got %d: %v", len(got), got)
	}
	if got["good"] != 1.0 || got["other"] != 2.0 {
		t.Errorf("unexpected values: %v", got)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idf.json")
	content := `{"the": 1.2, "quick": 3.4}`
	if err := writeFile(path, content); err != nil {
		t.Fatal(err)
	}

	got, err := LoadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if got["the"] != 1.2 || got["quick"] != 3.4 {
		t.Errorf("unexpected dictionary: %v", got)
	}
}

func TestLoadJSON_RejectsNonNumericWeight(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idf.json")
	content := `{"the": "not a number"}`
	if err := writeFile(path, content); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadJSON(path); err == nil {
		t.Fatal("expected an error for non-numeric weight")
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
