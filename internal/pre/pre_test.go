package pre

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse_valid(t *testing.T) {
	f, err := Parse([]byte(`{"tag": "beta", "changes": [".changes/a.md"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Tag != "beta" {
		t.Errorf("tag = %q, want beta", f.Tag)
	}
	if !f.Seen(".changes/a.md") || f.Seen(".changes/b.md") {
		t.Errorf("unexpected Seen results for %v", f.Changes)
	}
}

func TestParse_missingTag(t *testing.T) {
	if _, err := Parse([]byte(`{"changes": []}`)); err == nil {
		t.Fatal("expected error for missing tag")
	}
}

func TestParse_invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"tag": [}`)); err == nil {
		t.Fatal("expected error for invalid content")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	f := (&File{Tag: "rc"}).WithChanges([]string{".changes/b.md", ".changes/a.md", ".changes/b.md"})

	if err := Save(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Tag != "rc" {
		t.Errorf("tag = %q", loaded.Tag)
	}
	if !reflect.DeepEqual(loaded.Changes, []string{".changes/a.md", ".changes/b.md"}) {
		t.Errorf("changes = %v", loaded.Changes)
	}
}

func TestLoad_missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), FileName)); err == nil {
		t.Fatal("expected error for missing file")
	}
}
