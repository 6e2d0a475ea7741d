package fstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	storetesting "github.com/jasonrodrigues28/product-landing-page/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "FileStore", func(t *testing.T) store.IStore {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"), nil)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		return s
	})
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	storetesting.RunReopenTests(t, "FileStore", func(t *testing.T) store.IStore {
		s, err := NewFileStore(path, nil)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		return s
	})
}

func TestCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path, nil); err == nil {
		t.Errorf("Opening a corrupt document should fail")
	}
}

func TestNoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "store.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	for i := 0; i < 5; i++ {
		if err := s.Set("k", []byte{byte(i)}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("Expected no temp files, found %v", matches)
	}
}
