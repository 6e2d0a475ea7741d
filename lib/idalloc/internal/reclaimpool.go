// Package internal
//
// This file provides the reclaim pool of an id namespace: the set of freed
// sequence numbers that may be issued again.
//
// The pool combines a binary min-heap with a hash map:
//   - O(log n) for Add, PopMin and Remove
//   - O(1) for Min, Contains and Len
//
// Every number is stored at most once; adding a number that is already present
// is a no-op. The pool is not thread-safe, the allocator guards it with the
// namespace mutex.
package internal

import (
	"container/heap"
	"slices"
)

// entry is one reclaimed sequence number with its position in the heap.
type entry struct {
	n     uint64
	index int // maintained by the heap package
}

// ReclaimPool is a min-heap of unique sequence numbers with key-based access.
type ReclaimPool struct {
	items []*entry
	index map[uint64]*entry
}

// NewReclaimPool creates a pool holding the given numbers. Duplicates are
// collapsed.
func NewReclaimPool(ns ...uint64) *ReclaimPool {
	p := &ReclaimPool{
		items: make([]*entry, 0, len(ns)),
		index: make(map[uint64]*entry, len(ns)),
	}
	for _, n := range ns {
		if _, ok := p.index[n]; ok {
			continue
		}
		e := &entry{n: n, index: len(p.items)}
		p.items = append(p.items, e)
		p.index[n] = e
	}
	heap.Init(p)
	return p
}

// --------------------------------------------------------------------------
// heap.Interface
// --------------------------------------------------------------------------

func (p *ReclaimPool) Len() int { return len(p.items) }

func (p *ReclaimPool) Less(i, j int) bool {
	return p.items[i].n < p.items[j].n
}

func (p *ReclaimPool) Swap(i, j int) {
	p.items[i], p.items[j] = p.items[j], p.items[i]
	p.items[i].index = i
	p.items[j].index = j
}

func (p *ReclaimPool) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(p.items)
	p.items = append(p.items, e)
	p.index[e.n] = e
}

func (p *ReclaimPool) Pop() interface{} {
	old := p.items
	last := len(old) - 1
	e := old[last]
	old[last] = nil // avoid memory leak
	e.index = -1
	p.items = old[:last]
	delete(p.index, e.n)
	return e
}

// --------------------------------------------------------------------------
// Pool operations
// --------------------------------------------------------------------------

// Add inserts n and reports whether the pool changed.
func (p *ReclaimPool) Add(n uint64) bool {
	if _, exists := p.index[n]; exists {
		return false
	}
	heap.Push(p, &entry{n: n})
	return true
}

// Min returns the smallest number without removing it.
func (p *ReclaimPool) Min() (uint64, bool) {
	if len(p.items) == 0 {
		return 0, false
	}
	return p.items[0].n, true
}

// PopMin removes and returns the smallest number.
func (p *ReclaimPool) PopMin() (uint64, bool) {
	if len(p.items) == 0 {
		return 0, false
	}
	e := heap.Pop(p).(*entry)
	return e.n, true
}

// Remove deletes n and reports whether it was present.
func (p *ReclaimPool) Remove(n uint64) bool {
	e, exists := p.index[n]
	if !exists {
		return false
	}
	heap.Remove(p, e.index)
	return true
}

// Contains checks if n is in the pool.
func (p *ReclaimPool) Contains(n uint64) bool {
	_, exists := p.index[n]
	return exists
}

// RemoveFrom deletes every number >= n and returns how many were removed.
func (p *ReclaimPool) RemoveFrom(n uint64) int {
	removed := 0
	for k := range p.index {
		if k >= n {
			p.Remove(k)
			removed++
		}
	}
	return removed
}

// Sorted returns the numbers in ascending order.
func (p *ReclaimPool) Sorted() []uint64 {
	out := make([]uint64, 0, len(p.items))
	for _, e := range p.items {
		out = append(out, e.n)
	}
	slices.Sort(out)
	return out
}

// Clear empties the pool.
func (p *ReclaimPool) Clear() {
	clear(p.items)
	p.items = p.items[:0]
	clear(p.index)
}
