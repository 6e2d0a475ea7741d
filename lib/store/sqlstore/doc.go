// Package sqlstore implements store.IStore on a SQLite database
// (mattn/go-sqlite3, cgo). All keys live in the table storefront_kv.
//
// The database is opened in WAL mode with a busy timeout so a second process
// can read while another writes. Within one process a single connection is
// used.
package sqlstore
