package fstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

const (
	documentVersion    = 1
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 20 * time.Millisecond
)

// document is the on-disk layout. Values are base64 encoded by encoding/json.
type document struct {
	Version int               `json:"version"`
	Entries map[string][]byte `json:"entries"`
}

// Options configures the file store.
type Options struct {
	// LockTimeout is the maximum time to wait for the advisory file lock.
	LockTimeout time.Duration
}

// DefaultOptions returns the default file store options
func DefaultOptions() *Options {
	return &Options{
		LockTimeout: defaultLockTimeout,
	}
}

type storeImpl struct {
	path     string
	lockPath string
	timeout  time.Duration

	mu     sync.Mutex // serializes access within this process
	closed atomic.Bool
}

// NewFileStore opens (or creates) the JSON document at path.
// A sibling "<path>.lock" file is used for the advisory lock since the
// document itself is replaced by rename on every write.
func NewFileStore(path string, opts *Options) (store.IStore, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = defaultLockTimeout
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, store.WrapError(store.RetCInternalError, "create data directory", err)
	}

	s := &storeImpl{
		path:     path,
		lockPath: path + ".lock",
		timeout:  opts.LockTimeout,
	}

	// fail early on unreadable documents
	if err := s.withLock(false, func() error {
		_, err := s.read()
		return err
	}); err != nil {
		return nil, err
	}

	Logger.Debugf("opened file store %s", path)
	return s, nil
}

// --------------------------------------------------------------------------
// File handling
// --------------------------------------------------------------------------

// withLock runs fn while holding the in-process mutex and the advisory file lock.
func (s *storeImpl) withLock(exclusive bool, fn func() error) error {
	if s.closed.Load() {
		return store.NewError(store.RetCClosed, "file store is closed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lock := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var locked bool
	var err error
	if exclusive {
		locked, err = lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return store.WrapError(store.RetCInternalError, "acquire file lock", err)
	}
	if !locked {
		return store.NewError(store.RetCInternalError, "timeout acquiring file lock")
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func (s *storeImpl) read() (*document, error) {
	doc := &document{Version: documentVersion, Entries: map[string][]byte{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "read store file", err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, store.WrapError(store.RetCInternalError, fmt.Sprintf("decode store file %s", s.path), err)
	}
	if doc.Version != documentVersion {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("unsupported store file version %d", doc.Version))
	}
	if doc.Entries == nil {
		doc.Entries = map[string][]byte{}
	}
	return doc, nil
}

// write replaces the document atomically using a temp file + rename.
func (s *storeImpl) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return store.WrapError(store.RetCInternalError, "encode store file", err)
	}

	tempFile := fmt.Sprintf("%s.%d.%d.tmp", s.path, os.Getpid(), time.Now().UnixNano())
	f, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return store.WrapError(store.RetCInternalError, "create temp file", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tempFile)
		return store.WrapError(store.RetCInternalError, "write temp file", err)
	}
	_ = f.Sync()
	if err := f.Close(); err != nil {
		_ = os.Remove(tempFile)
		return store.WrapError(store.RetCInternalError, "close temp file", err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		_ = os.Remove(tempFile)
		return store.WrapError(store.RetCInternalError, "rename temp file", err)
	}
	return nil
}

// update applies fn to the document and writes it back if fn reports a change.
func (s *storeImpl) update(fn func(doc *document) bool) error {
	return s.withLock(true, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		if !fn(doc) {
			return nil
		}
		return s.write(doc)
	})
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	return s.update(func(doc *document) bool {
		doc.Entries[key] = slices.Clone(value)
		return true
	})
}

func (s *storeImpl) Delete(key string) error {
	return s.update(func(doc *document) bool {
		if _, ok := doc.Entries[key]; !ok {
			return false
		}
		delete(doc.Entries, key)
		return true
	})
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := s.withLock(false, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		value, found = doc.Entries[key]
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	_, found, err := s.Get(key)
	return found, err
}

func (s *storeImpl) Keys(prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.withLock(false, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		for key := range doc.Entries {
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *storeImpl) Close() error {
	s.closed.Store(true)
	return nil
}
