// Package lstore implements a local, in-memory key-value store based on the
// store.IStore interface. Data lives in an xsync.MapOf and is lost when the
// process exits.
//
// Values are copied on Set and on Get, so callers may reuse their buffers.
// All operations are safe for concurrent use. After Close every operation
// returns a store.Error with code RetCClosed.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//	states := idalloc.NewKVStateStore(s, serializer.NewBinarySerializer(), "ids/")
//	alloc := idalloc.New(states)
package lstore
