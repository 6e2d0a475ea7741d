package lstore

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

type storeImpl struct {
	data   *xsync.MapOf[string, []byte]
	closed atomic.Bool
}

// NewLocalStore creates a new local store instance.
// This store is not persistent and only lives as long as the process.
func NewLocalStore() store.IStore {
	return &storeImpl{
		data: xsync.NewMapOf[string, []byte](),
	}
}

func (s *storeImpl) checkOpen() error {
	if s.closed.Load() {
		return store.NewError(store.RetCClosed, "local store is closed")
	}
	return nil
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
	s.data.Store(key, slices.Clone(value))
	return nil
}

func (s *storeImpl) Delete(key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.data.Delete(key)
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}
	val, ok := s.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(val), true, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	_, ok := s.data.Load(key)
	return ok, nil
}

func (s *storeImpl) Keys(prefix string) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	keys := make([]string, 0)
	s.data.Range(func(key string, _ []byte) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	slices.Sort(keys)
	return keys, nil
}

func (s *storeImpl) Close() error {
	s.closed.Store(true)
	return nil
}
