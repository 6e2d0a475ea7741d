// Package pgstore implements store.IStore on PostgreSQL through gorm.
//
// Every key is one row of the storefront_kv table (key, value, updated_at).
// Keys are ordered by the database collation of the key column; use a "C"
// collation if byte order matters. Each operation runs with its own timeout
// (Options.OpTimeout).
//
// The store is meant for deployments where several storefront processes share
// one allocator state.
package pgstore
