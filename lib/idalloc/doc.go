// Package idalloc issues per-namespace sequential identifiers with hole reuse.
//
// An identifier has the form "<prefix>-<n>" where n is a positive integer, for
// example "JD-7". Every namespace (one per seller in the storefront) keeps
//
//	next      the smallest integer never issued
//	hwm       the largest integer ever issued
//	reclaimed freed integers that may be issued again
//
// Allocate issues the smallest reclaimed integer if there is one and the next
// sequential integer otherwise. next never decreases, so an identifier is never
// held by two live entities at the same time.
//
// State is persisted after every mutation through an IStateStore.
// KVStateStore adapts any store.IStore backend using one of the serializers
// of package serializer:
//
//	kv := lstore.NewLocalStore()
//	alloc := idalloc.New(idalloc.NewKVStateStore(kv, serializer.NewJSONSerializer(), ""))
//	_ = alloc.Ensure("jane@example.com", "JD")
//	id, err := alloc.Allocate("jane@example.com") // "JD-1"
//
// Operations on one namespace are serialized by a mutex per namespace. Two
// processes sharing one backend are not coordinated: the last Save wins.
package idalloc
