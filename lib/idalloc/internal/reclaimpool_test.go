package internal

import (
	"container/heap"
	"math/rand"
	"slices"
	"testing"
)

// TestNewReclaimPool tests the creation of a pool from existing numbers
func TestNewReclaimPool(t *testing.T) {
	p := NewReclaimPool()
	if p.Len() != 0 {
		t.Errorf("New pool should be empty, but has length %d", p.Len())
	}

	p = NewReclaimPool(7, 3, 9, 3)
	if p.Len() != 3 {
		t.Errorf("Duplicates should collapse, expected 3 items, got %d", p.Len())
	}
	if min, ok := p.Min(); !ok || min != 3 {
		t.Errorf("Expected min 3, got %d (ok=%v)", min, ok)
	}
}

// TestAdd tests that adding is idempotent
func TestAdd(t *testing.T) {
	p := NewReclaimPool()

	if !p.Add(5) {
		t.Error("First Add(5) should change the pool")
	}
	if p.Add(5) {
		t.Error("Second Add(5) should not change the pool")
	}
	if p.Len() != 1 {
		t.Errorf("Expected exactly one entry, got %d", p.Len())
	}
	if !p.Contains(5) {
		t.Error("Pool should contain 5")
	}
}

// TestPopMin tests that numbers come out in ascending order
func TestPopMin(t *testing.T) {
	p := NewReclaimPool()
	for _, n := range []uint64{40, 2, 17, 9, 1, 33} {
		p.Add(n)
	}

	expected := []uint64{1, 2, 9, 17, 33, 40}
	for i, want := range expected {
		got, ok := p.PopMin()
		if !ok {
			t.Fatalf("PopMin %d returned no item", i)
		}
		if got != want {
			t.Errorf("PopMin %d: expected %d, got %d", i, want, got)
		}
		if p.Contains(got) {
			t.Errorf("Popped number %d should no longer be contained", got)
		}
	}

	if _, ok := p.PopMin(); ok {
		t.Error("PopMin on empty pool should return false")
	}
	if _, ok := p.Min(); ok {
		t.Error("Min on empty pool should return false")
	}
}

// TestRemove tests removal of arbitrary numbers
func TestRemove(t *testing.T) {
	p := NewReclaimPool(1, 2, 3, 4, 5)

	if !p.Remove(1) {
		t.Error("Remove(1) should report true")
	}
	if p.Remove(1) {
		t.Error("Remove(1) twice should report false")
	}
	if !p.Remove(4) {
		t.Error("Remove(4) should report true")
	}

	if got := p.Sorted(); !slices.Equal(got, []uint64{2, 3, 5}) {
		t.Errorf("Expected [2 3 5], got %v", got)
	}
	if min, _ := p.Min(); min != 2 {
		t.Errorf("Expected min 2 after removals, got %d", min)
	}
}

// TestRemoveFrom tests dropping a tail of numbers
func TestRemoveFrom(t *testing.T) {
	p := NewReclaimPool(2, 4, 6, 8, 10)

	if removed := p.RemoveFrom(6); removed != 3 {
		t.Errorf("Expected 3 numbers removed, got %d", removed)
	}
	if got := p.Sorted(); !slices.Equal(got, []uint64{2, 4}) {
		t.Errorf("Expected [2 4], got %v", got)
	}
	if removed := p.RemoveFrom(100); removed != 0 {
		t.Errorf("Expected nothing removed, got %d", removed)
	}
}

// TestClear tests emptying the pool
func TestClear(t *testing.T) {
	p := NewReclaimPool(1, 2, 3)
	p.Clear()

	if p.Len() != 0 || len(p.index) != 0 {
		t.Errorf("Pool should be empty after Clear, got len %d, index %d", p.Len(), len(p.index))
	}
	if !p.Add(2) {
		t.Error("Add after Clear should change the pool")
	}
}

// TestHeapProperty checks the heap invariant after random operations
func TestHeapProperty(t *testing.T) {
	p := NewReclaimPool()
	r := rand.New(rand.NewSource(42))
	reference := map[uint64]bool{}

	for i := 0; i < 2000; i++ {
		n := uint64(r.Intn(200) + 1)
		switch r.Intn(3) {
		case 0, 1:
			p.Add(n)
			reference[n] = true
		case 2:
			p.Remove(n)
			delete(reference, n)
		}
	}

	if p.Len() != len(reference) {
		t.Fatalf("Expected %d entries, got %d", len(reference), p.Len())
	}
	for i := 1; i < p.Len(); i++ {
		parent := (i - 1) / 2
		if p.items[parent].n > p.items[i].n {
			t.Fatalf("Heap property violated at %d", i)
		}
		if p.items[i].index != i {
			t.Fatalf("Stale index at %d", i)
		}
	}

	var prev uint64
	for p.Len() > 0 {
		e := heap.Pop(p).(*entry)
		if e.n < prev {
			t.Fatalf("Pop order violated: %d after %d", e.n, prev)
		}
		prev = e.n
	}
}
