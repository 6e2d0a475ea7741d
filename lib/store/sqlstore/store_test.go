package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	storetesting "github.com/jasonrodrigues28/product-landing-page/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "SQLiteStore", func(t *testing.T) store.IStore {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		return s
	})
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	storetesting.RunReopenTests(t, "SQLiteStore", func(t *testing.T) store.IStore {
		s, err := NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		return s
	})
}
