// Package store provides the persistence abstraction of the storefront: a
// small key-value interface that the id allocator, the catalog, the review
// store and the user directory write their state through.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations across different backends
//   - Pluggable storage backends through the Factory pattern
//   - Structured errors (*Error with a RetCode) instead of backend-specific ones
//
// Implementations:
//
//   - Local Store (lstore): in-memory, process-local, backed by a concurrent
//     map. Used in tests and for throw-away sessions.
//
//   - File Store (fstore): a single JSON document on disk guarded by an
//     advisory file lock and replaced atomically on every write. This is the
//     storefront's "local persistent storage".
//
//   - SQLite Store (sqlstore): a table in a SQLite database file.
//
//   - Postgres Store (pgstore): a table in a shared Postgres database,
//     accessed through gorm. This is the remote database mirror several
//     storefront instances can share.
//
// The testing subpackage holds the conformance suite every backend runs.
//
// Concurrency:
//
//	All implementations are safe for concurrent use within one process.
//	Across processes the contract is last-writer-wins per key.
package store
