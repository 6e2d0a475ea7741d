// Package testing provides the conformance suite for store.IStore
// implementations.
//
//   - RunStoreTests: behaviour every backend must share (copy semantics,
//     prefix listing, empty keys, concurrent writers, Close)
//   - RunReopenTests: durability across two instances on the same location,
//     for backends that persist
//
// Example usage:
//
//	func Test(t *testing.T) {
//		storetesting.RunStoreTests(t, "MyStore", func(t *testing.T) store.IStore {
//			return NewMyStore(t.TempDir())
//		})
//	}
package testing
