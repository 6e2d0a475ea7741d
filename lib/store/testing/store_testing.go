package testing

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/jasonrodrigues28/product-landing-page/lib/store"
)

// StoreFactory creates a new, empty instance of an IStore implementation
type StoreFactory func(t *testing.T) store.IStore

// RunStoreTests runs the conformance suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(t))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory(t))
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory(t))
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory(t))
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory(t))
		})

		t.Run("Concurrency", func(t *testing.T) {
			testConcurrency(t, factory(t))
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, factory(t))
		})
	})
}

// RunReopenTests checks that data written through one instance is visible
// through a second instance opened on the same location. open must return a
// new instance for the same backing location on every call.
func RunReopenTests(t *testing.T, name string, open StoreFactory) {
	t.Run(name+"/Reopen", func(t *testing.T) {
		first := open(t)
		if err := first.Set("persist/a", []byte("alpha")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := first.Set("persist/b", []byte("beta")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := first.Delete("persist/b"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := first.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		second := open(t)
		defer second.Close()

		value, ok, err := second.Get("persist/a")
		if err != nil || !ok {
			t.Fatalf("Expected persist/a after reopen, ok=%v err=%v", ok, err)
		}
		if !bytes.Equal(value, []byte("alpha")) {
			t.Errorf("Expected value alpha, got %s", value)
		}
		if ok, _ := second.Has("persist/b"); ok {
			t.Errorf("Deleted key persist/b should not survive reopen")
		}
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s store.IStore) {
	defer s.Close()

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if err := s.Set(testKey, testValue1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists, err := s.Get(testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	if err := s.Set(testKey, testValue2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	result, _, _ = s.Get(testKey)
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists, err = s.Get("nonexistent-key")
	if err != nil {
		t.Fatalf("Get of missing key returned error: %v", err)
	}
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _, _ := s.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _, _ := s.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	input := []byte("mutable")
	if err := s.Set("copy-key", input); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	input[0] = 'X'
	stored, _, _ := s.Get("copy-key")
	if !bytes.Equal(stored, []byte("mutable")) {
		t.Errorf("Set should copy the value, got %s", stored)
	}
}

func testDelete(t *testing.T, s store.IStore) {
	defer s.Close()

	if err := s.Set("delete-key", []byte("value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Delete("delete-key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, exists, _ := s.Get("delete-key"); exists {
		t.Errorf("Key should not exist after Delete")
	}

	if err := s.Delete("never-set"); err != nil {
		t.Errorf("Deleting a missing key should not fail, got %v", err)
	}
}

func testHas(t *testing.T, s store.IStore) {
	defer s.Close()

	if ok, err := s.Has("has-key"); err != nil || ok {
		t.Errorf("Has on empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Set("has-key", []byte{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ok, err := s.Has("has-key"); err != nil || !ok {
		t.Errorf("Has after Set of empty value: ok=%v err=%v", ok, err)
	}
}

func testKeys(t *testing.T, s store.IStore) {
	defer s.Close()

	for _, key := range []string{"ids/b", "ids/a", "reviews/p-1", "ids/c", "idsx"} {
		if err := s.Set(key, []byte(key)); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	keys, err := s.Keys("ids/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	expected := []string{"ids/a", "ids/b", "ids/c"}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}

	all, err := s.Keys("")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected 5 keys for the empty prefix, got %v", all)
	}

	none, err := s.Keys("nothing/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no keys, got %v", none)
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	defer s.Close()

	err := s.Set("", []byte("value"))
	if err == nil {
		t.Errorf("Set with empty key should fail")
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.RetCInvalidOperation {
		t.Errorf("Expected RetCInvalidOperation, got %v", err)
	}

	unicodeKey := "käse/über-ü"
	if err := s.Set(unicodeKey, []byte("value")); err != nil {
		t.Fatalf("Set with unicode key failed: %v", err)
	}
	if _, ok, _ := s.Get(unicodeKey); !ok {
		t.Errorf("Unicode key should be retrievable")
	}

	large := bytes.Repeat([]byte("x"), 1<<20)
	if err := s.Set("large", large); err != nil {
		t.Fatalf("Set of 1MB value failed: %v", err)
	}
	got, _, _ := s.Get("large")
	if !bytes.Equal(got, large) {
		t.Errorf("Large value did not round trip (len %d)", len(got))
	}
}

func testConcurrency(t *testing.T, s store.IStore) {
	defer s.Close()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("concurrent/%d/%d", w, i)
				if err := s.Set(key, []byte(key)); err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("Concurrent Set failed: %v", err)
	}

	keys, err := s.Keys("concurrent/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != workers*perWorker {
		t.Errorf("Expected %d keys, got %d", workers*perWorker, len(keys))
	}
}

func testClose(t *testing.T, s store.IStore) {
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Set("after-close", []byte("v")); err == nil {
		t.Errorf("Set after Close should fail")
	}
	if _, _, err := s.Get("after-close"); err == nil {
		t.Errorf("Get after Close should fail")
	}
}
