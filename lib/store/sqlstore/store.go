package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/lni/dragonboat/v4/logger"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

var Logger = logger.GetLogger("store")

const createTableSQL = `
CREATE TABLE IF NOT EXISTS storefront_kv (
	key   TEXT PRIMARY KEY NOT NULL,
	value BLOB NOT NULL
)`

type storeImpl struct {
	db     *sql.DB
	closed atomic.Bool

	setStmt    *sql.Stmt
	getStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	keysStmt   *sql.Stmt
}

// NewSQLiteStore opens (or creates) the SQLite database at path and prepares
// the key-value table.
func NewSQLiteStore(path string) (store.IStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, store.WrapError(store.RetCInternalError, "create data directory", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "open sqlite database", err)
	}
	// sqlite allows a single writer; one connection avoids SQLITE_BUSY inside the process
	db.SetMaxOpenConns(1)

	s := &storeImpl{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	Logger.Debugf("opened sqlite store %s", path)
	return s, nil
}

func (s *storeImpl) init() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return store.WrapError(store.RetCInternalError, "create table", err)
	}

	var err error
	prepare := func(query string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var stmt *sql.Stmt
		stmt, err = s.db.Prepare(query)
		return stmt
	}

	s.setStmt = prepare(`INSERT INTO storefront_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	s.getStmt = prepare(`SELECT value FROM storefront_kv WHERE key = ?`)
	s.deleteStmt = prepare(`DELETE FROM storefront_kv WHERE key = ?`)
	s.keysStmt = prepare(`SELECT key FROM storefront_kv WHERE substr(key, 1, length(?)) = ? ORDER BY key`)

	if err != nil {
		return store.WrapError(store.RetCInternalError, "prepare statements", err)
	}
	return nil
}

func (s *storeImpl) checkOpen() error {
	if s.closed.Load() {
		return store.NewError(store.RetCClosed, "sqlite store is closed")
	}
	return nil
}

// mapErr converts database errors into store errors.
func mapErr(msg string, err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		return store.WrapError(store.RetCClosed, msg, err)
	}
	return store.WrapError(store.RetCInternalError, msg, err)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := s.setStmt.Exec(key, value); err != nil {
		return mapErr("set "+key, err)
	}
	return nil
}

func (s *storeImpl) Delete(key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.deleteStmt.Exec(key); err != nil {
		return mapErr("delete "+key, err)
	}
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.getStmt.QueryRow(key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapErr("get "+key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	_, found, err := s.Get(key)
	return found, err
}

func (s *storeImpl) Keys(prefix string) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	rows, err := s.keysStmt.Query(prefix, prefix)
	if err != nil {
		return nil, mapErr("list keys", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, mapErr("scan key", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list keys", err)
	}
	return keys, nil
}

func (s *storeImpl) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	for _, stmt := range []*sql.Stmt{s.setStmt, s.getStmt, s.deleteStmt, s.keysStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if err := s.db.Close(); err != nil {
		return store.WrapError(store.RetCInternalError, "close sqlite database", err)
	}
	return nil
}
