package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestJSONStore_SaveLoad(t *testing.T) {
	s, err := NewJSONStore(filepath.Join(t.TempDir(), "nested"), "doc.json")
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	assert.Equal(t, false, s.Exists())

	if err := s.Save(doc{Name: "amy", Items: []string{"a", "b"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	assert.Equal(t, true, s.Exists())

	var got doc
	if err := s.Load(&got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, "amy", got.Name)
	assert.Equal(t, []string{"a", "b"}, got.Items)

	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestJSONStore_LoadMissing(t *testing.T) {
	s, err := NewJSONStore(t.TempDir(), "missing.json")
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	got := doc{Name: "unchanged"}
	if err := s.Load(&got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, "unchanged", got.Name)
}

func TestJSONStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewJSONStore(dir, "bad.json")
	var got doc
	if err := s.Load(&got); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestJSONStore_Remove(t *testing.T) {
	s, _ := NewJSONStore(t.TempDir(), "doc.json")
	if err := s.Save(doc{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assert.Equal(t, false, s.Exists())
	if err := s.Remove(); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}
