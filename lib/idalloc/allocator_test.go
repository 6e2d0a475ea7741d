package idalloc

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
	"github.com/jasonrodrigues28/product-landing-page/lib/serializer"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/jasonrodrigues28/product-landing-page/lib/store/lstore"
)

const ns = "jane@example.com"

// newTestAllocator returns an allocator on a fresh in-memory store with the
// namespace ns already created with prefix P.
func newTestAllocator(t *testing.T) (*Allocator, store.IStore) {
	t.Helper()
	kv := lstore.NewLocalStore()
	a := New(NewKVStateStore(kv, serializer.NewJSONSerializer(), ""))
	if err := a.Ensure(ns, "P"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	return a, kv
}

func mustAllocate(t *testing.T, a IAllocator, namespace string) string {
	t.Helper()
	id, err := a.Allocate(namespace)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	return id
}

func mustState(t *testing.T, a IAllocator, namespace string) common.CounterState {
	t.Helper()
	state, err := a.State(namespace)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	return state
}

func TestAllocateSequential(t *testing.T) {
	a, _ := newTestAllocator(t)

	for k := 1; k <= 5; k++ {
		expected := fmt.Sprintf("P-%d", k)
		if id := mustAllocate(t, a, ns); id != expected {
			t.Errorf("Allocation %d: expected %s, got %s", k, expected, id)
		}
	}

	state := mustState(t, a, ns)
	if state.NextSequential != 6 || state.HighWaterMark != 5 || len(state.Reclaimed) != 0 {
		t.Errorf("Unexpected state after 5 allocations: %s", state)
	}
}

func TestAllocateLazyNamespace(t *testing.T) {
	kv := lstore.NewLocalStore()
	a := New(NewKVStateStore(kv, serializer.NewJSONSerializer(), ""),
		WithPrefixFunc(func(string) string { return "SL" }))

	if id := mustAllocate(t, a, "seller@example.com"); id != "SL-1" {
		t.Errorf("Expected SL-1, got %s", id)
	}

	// default prefix derives initials from the namespace
	b := New(NewKVStateStore(lstore.NewLocalStore(), serializer.NewJSONSerializer(), ""))
	if id := mustAllocate(t, b, "acme"); id != "AC-1" {
		t.Errorf("Expected AC-1, got %s", id)
	}
}

func TestFreeThenAllocateReusesMinimum(t *testing.T) {
	a, _ := newTestAllocator(t)
	for i := 0; i < 5; i++ {
		mustAllocate(t, a, ns)
	}

	if err := a.Free(ns, "P-4"); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	if err := a.Free(ns, "P-2"); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	for _, expected := range []string{"P-2", "P-4", "P-6"} {
		if id := mustAllocate(t, a, ns); id != expected {
			t.Errorf("Expected %s, got %s", expected, id)
		}
	}

	state := mustState(t, a, ns)
	if state.NextSequential != 7 || state.HighWaterMark != 6 {
		t.Errorf("Reuse must not move the counters twice: %s", state)
	}
}

func TestAllocateFreeAllocate(t *testing.T) {
	a, _ := newTestAllocator(t)

	first := mustAllocate(t, a, ns)
	if err := a.Free(ns, first); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	second := mustAllocate(t, a, ns)

	if first != second {
		t.Errorf("Expected the freed identifier %s again, got %s", first, second)
	}
	if state := mustState(t, a, ns); state.NextSequential != 2 {
		t.Errorf("Expected next 2, got %d", state.NextSequential)
	}
}

func TestFreeIgnoresInvalidIdentifiers(t *testing.T) {
	a, _ := newTestAllocator(t)
	for i := 0; i < 3; i++ {
		mustAllocate(t, a, ns)
	}
	before := mustState(t, a, ns)

	invalid := []string{"", "garbage", "P-", "P-0", "P-abc", "P-+2", "P-4", "P-99", "Q-1", "P--1"}
	for _, id := range invalid {
		if err := a.Free(ns, id); err != nil {
			t.Errorf("Free(%q) should not fail, got %v", id, err)
		}
	}
	if err := a.FreeMany(ns, invalid); err != nil {
		t.Errorf("FreeMany should not fail, got %v", err)
	}

	after := mustState(t, a, ns)
	if after.NextSequential != before.NextSequential ||
		after.HighWaterMark != before.HighWaterMark ||
		len(after.Reclaimed) != len(before.Reclaimed) {
		t.Errorf("Invalid frees changed the state: before %s, after %s", before, after)
	}
}

func TestFreeWithoutPrefixAcceptsAnyPrefix(t *testing.T) {
	kv := lstore.NewLocalStore()
	states := NewKVStateStore(kv, serializer.NewJSONSerializer(), "")
	state := common.CounterState{NextSequential: 3, HighWaterMark: 2}
	if err := states.Save(ns, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	a := New(states)
	if err := a.Free(ns, "ZZ-2"); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	if got := mustState(t, a, ns).Reclaimed; !slices.Equal(got, []uint64{2}) {
		t.Errorf("Expected reclaimed [2], got %v", got)
	}

	// the first allocation assigns the default prefix
	if id := mustAllocate(t, a, ns); id != "JA-2" {
		t.Errorf("Expected JA-2, got %s", id)
	}
	if err := a.Free(ns, "ZZ-1"); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	if got := mustState(t, a, ns).Reclaimed; len(got) != 0 {
		t.Errorf("Foreign prefix freed after the prefix was assigned: %v", got)
	}
}

func TestDoubleFree(t *testing.T) {
	a, _ := newTestAllocator(t)
	mustAllocate(t, a, ns)
	mustAllocate(t, a, ns)

	for i := 0; i < 2; i++ {
		if err := a.Free(ns, "P-1"); err != nil {
			t.Fatalf("Free failed: %v", err)
		}
	}

	state := mustState(t, a, ns)
	if !slices.Equal(state.Reclaimed, []uint64{1}) {
		t.Errorf("Expected reclaimed [1], got %v", state.Reclaimed)
	}
	if mustAllocate(t, a, ns) != "P-1" || mustAllocate(t, a, ns) != "P-3" {
		t.Errorf("A doubly freed identifier must be reissued only once")
	}
}

func TestFreeNeverLowersNext(t *testing.T) {
	a, _ := newTestAllocator(t)
	for i := 0; i < 3; i++ {
		mustAllocate(t, a, ns)
	}
	if err := a.FreeMany(ns, []string{"P-1", "P-2", "P-3"}); err != nil {
		t.Fatalf("FreeMany failed: %v", err)
	}

	state := mustState(t, a, ns)
	if state.NextSequential != 4 || state.HighWaterMark != 3 {
		t.Errorf("Freeing everything must not lower the counters: %s", state)
	}
	if !slices.Equal(state.Reclaimed, []uint64{1, 2, 3}) {
		t.Errorf("Expected reclaimed [1 2 3], got %v", state.Reclaimed)
	}
}

func TestFreeUnknownNamespace(t *testing.T) {
	a, kv := newTestAllocator(t)

	if err := a.Free("nobody@example.com", "P-1"); err != nil {
		t.Fatalf("Free on unknown namespace should be a no-op, got %v", err)
	}
	if slices.Contains(a.Namespaces(), "nobody@example.com") {
		t.Errorf("Free must not create a namespace")
	}
	if ok, _ := kv.Has(DefaultKeyPrefix + "nobody@example.com"); ok {
		t.Errorf("Free must not persist an unknown namespace")
	}
}

func TestReset(t *testing.T) {
	a, _ := newTestAllocator(t)
	for i := 0; i < 4; i++ {
		mustAllocate(t, a, ns)
	}
	if err := a.Free(ns, "P-2"); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	if err := a.Reset(ns); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	state := mustState(t, a, ns)
	if state.NextSequential != 1 || state.HighWaterMark != 0 || len(state.Reclaimed) != 0 {
		t.Errorf("Unexpected state after reset: %s", state)
	}
	if state.Prefix != "P" {
		t.Errorf("Reset must keep the prefix, got %q", state.Prefix)
	}
	if id := mustAllocate(t, a, ns); id != "P-1" {
		t.Errorf("Expected P-1 after reset, got %s", id)
	}
}

func TestRebuildFromExisting(t *testing.T) {
	a, _ := newTestAllocator(t)
	for i := 0; i < 7; i++ {
		mustAllocate(t, a, ns)
	}
	if err := a.FreeMany(ns, []string{"P-3", "P-5", "P-7"}); err != nil {
		t.Fatalf("FreeMany failed: %v", err)
	}

	if err := a.RebuildFromExisting(ns, []string{"P-3", "P-7", "broken", "Q-50"}); err != nil {
		t.Fatalf("RebuildFromExisting failed: %v", err)
	}

	state := mustState(t, a, ns)
	if state.HighWaterMark != 7 || state.NextSequential != 8 {
		t.Errorf("Expected hwm 7 and next 8, got %s", state)
	}
	if !slices.Equal(state.Reclaimed, []uint64{5}) {
		t.Errorf("Expected reclaimed [5], got %v", state.Reclaimed)
	}
}

func TestRebuildDropsReclaimedAboveHighWaterMark(t *testing.T) {
	a, _ := newTestAllocator(t)
	for i := 0; i < 10; i++ {
		mustAllocate(t, a, ns)
	}
	if err := a.FreeMany(ns, []string{"P-2", "P-9"}); err != nil {
		t.Fatalf("FreeMany failed: %v", err)
	}

	if err := a.RebuildFromExisting(ns, []string{"P-1", "P-3"}); err != nil {
		t.Fatalf("RebuildFromExisting failed: %v", err)
	}

	state := mustState(t, a, ns)
	if state.NextSequential != 4 || !slices.Equal(state.Reclaimed, []uint64{2}) {
		t.Errorf("Expected next 4 and reclaimed [2], got %s", state)
	}
	ids := []string{mustAllocate(t, a, ns), mustAllocate(t, a, ns)}
	if !slices.Equal(ids, []string{"P-2", "P-4"}) {
		t.Errorf("Expected [P-2 P-4], got %v", ids)
	}
}

func TestRebuildNewNamespace(t *testing.T) {
	a := New(NewKVStateStore(lstore.NewLocalStore(), serializer.NewJSONSerializer(), ""))

	if err := a.RebuildFromExisting("new@example.com", []string{"bad", "MK-4", "MK-2"}); err != nil {
		t.Fatalf("RebuildFromExisting failed: %v", err)
	}
	state := mustState(t, a, "new@example.com")
	if state.Prefix != "MK" || state.NextSequential != 5 || state.HighWaterMark != 4 {
		t.Errorf("Unexpected rebuilt state: %s", state)
	}

	if err := a.RebuildFromExisting("empty@example.com", nil); err != nil {
		t.Fatalf("RebuildFromExisting failed: %v", err)
	}
	state = mustState(t, a, "empty@example.com")
	if state.NextSequential != 1 || state.HighWaterMark != 0 {
		t.Errorf("Empty rebuild should yield the initial state, got %s", state)
	}
}

func TestEnsureKeepsPrefix(t *testing.T) {
	a, _ := newTestAllocator(t)

	if err := a.Ensure(ns, "OTHER"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if id := mustAllocate(t, a, ns); id != "P-1" {
		t.Errorf("Ensure must not change an assigned prefix, got %s", id)
	}

	if err := a.Ensure(ns, ""); err != ErrInvalidPrefix {
		t.Errorf("Expected ErrInvalidPrefix, got %v", err)
	}
	if err := a.Ensure(ns, "A B"); err != ErrInvalidPrefix {
		t.Errorf("Expected ErrInvalidPrefix, got %v", err)
	}
	if _, err := a.Allocate(""); err != ErrInvalidNamespace {
		t.Errorf("Expected ErrInvalidNamespace, got %v", err)
	}
}

func TestPeek(t *testing.T) {
	a, _ := newTestAllocator(t)

	peek := func() string {
		id, err := a.Peek(ns)
		if err != nil {
			t.Fatalf("Peek failed: %v", err)
		}
		return id
	}

	if id := peek(); id != "P-1" {
		t.Errorf("Expected P-1, got %s", id)
	}
	mustAllocate(t, a, ns)
	mustAllocate(t, a, ns)
	if id := peek(); id != "P-3" {
		t.Errorf("Expected P-3, got %s", id)
	}
	_ = a.Free(ns, "P-1")
	if id := peek(); id != "P-1" {
		t.Errorf("Expected P-1 after free, got %s", id)
	}
	if peeked := peek(); peeked != mustAllocate(t, a, ns) {
		t.Errorf("Allocate disagrees with Peek %s", peeked)
	}

	other, err := a.Peek("unknown")
	if err != nil || other != "UN-1" {
		t.Errorf("Expected UN-1 for unknown namespace, got %s (%v)", other, err)
	}
	if slices.Contains(a.Namespaces(), "unknown") {
		t.Errorf("Peek must not create a namespace")
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	a, _ := newTestAllocator(t)
	if err := a.Ensure("bob@example.com", "BB"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	mustAllocate(t, a, ns)
	mustAllocate(t, a, ns)
	if id := mustAllocate(t, a, "bob@example.com"); id != "BB-1" {
		t.Errorf("Expected BB-1, got %s", id)
	}
	_ = a.Free(ns, "P-1")
	if id := mustAllocate(t, a, "bob@example.com"); id != "BB-2" {
		t.Errorf("Free in one namespace leaked into another, got %s", id)
	}

	if got := a.Namespaces(); !slices.Equal(got, []string{"bob@example.com", ns}) {
		t.Errorf("Unexpected namespaces %v", got)
	}
}

func TestNamespacesIncludePersisted(t *testing.T) {
	a, kv := newTestAllocator(t)
	mustAllocate(t, a, "bob@example.com")

	fresh := New(NewKVStateStore(kv, serializer.NewJSONSerializer(), ""))
	if got := fresh.Namespaces(); !slices.Equal(got, []string{"bob@example.com", ns}) {
		t.Errorf("Expected persisted namespaces, got %v", got)
	}

	// loaded and persisted namespaces are listed once
	mustAllocate(t, fresh, ns)
	if got := fresh.Namespaces(); !slices.Equal(got, []string{"bob@example.com", ns}) {
		t.Errorf("Unexpected namespaces %v", got)
	}
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary"} {
		t.Run(name, func(t *testing.T) {
			s, err := serializer.New(name)
			if err != nil {
				t.Fatalf("serializer.New failed: %v", err)
			}
			kv := lstore.NewLocalStore()

			first := New(NewKVStateStore(kv, s, ""))
			if err := first.Ensure(ns, "P"); err != nil {
				t.Fatalf("Ensure failed: %v", err)
			}
			for i := 0; i < 4; i++ {
				mustAllocate(t, first, ns)
			}
			if err := first.FreeMany(ns, []string{"P-3", "P-2"}); err != nil {
				t.Fatalf("FreeMany failed: %v", err)
			}

			second := New(NewKVStateStore(kv, s, ""))
			ids := []string{mustAllocate(t, second, ns), mustAllocate(t, second, ns), mustAllocate(t, second, ns)}
			if !slices.Equal(ids, []string{"P-2", "P-3", "P-5"}) {
				t.Errorf("Expected [P-2 P-3 P-5], got %v", ids)
			}

			namespaces, err := NewKVStateStore(kv, s, "").Namespaces()
			if err != nil || !slices.Equal(namespaces, []string{ns}) {
				t.Errorf("Expected persisted namespace %s, got %v (%v)", ns, namespaces, err)
			}
		})
	}
}

func TestLoadedStateIsSanitized(t *testing.T) {
	kv := lstore.NewLocalStore()
	states := NewKVStateStore(kv, serializer.NewJSONSerializer(), "")
	err := states.Save(ns, common.CounterState{
		Prefix:         "P",
		NextSequential: 0,
		HighWaterMark:  3,
		Reclaimed:      []uint64{0, 2, 4, 9},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	a := New(states)
	state := mustState(t, a, ns)
	if state.NextSequential != 4 {
		t.Errorf("Expected next raised to hwm+1 = 4, got %d", state.NextSequential)
	}
	if !slices.Equal(state.Reclaimed, []uint64{2}) {
		t.Errorf("Expected only issued numbers in the pool, got %v", state.Reclaimed)
	}
}

func TestConcurrentAllocate(t *testing.T) {
	a, _ := newTestAllocator(t)

	const workers = 8
	const perWorker = 50

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := a.Allocate(ns)
				if err != nil {
					t.Errorf("Allocate failed: %v", err)
					return
				}
				mu.Lock()
				if seen[id] {
					t.Errorf("Identifier %s issued twice", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d identifiers, got %d", workers*perWorker, len(seen))
	}
	if state := mustState(t, a, ns); state.NextSequential != workers*perWorker+1 {
		t.Errorf("Expected next %d, got %d", workers*perWorker+1, state.NextSequential)
	}
}
