package idalloc

import (
	"fmt"
	"strings"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
	"github.com/jasonrodrigues28/product-landing-page/lib/serializer"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
)

// DefaultKeyPrefix is the key prefix under which namespace states are stored.
const DefaultKeyPrefix = "ids/"

// KVStateStore persists namespace states in a key-value store. Each namespace
// is stored under keyPrefix+namespace, encoded with the given serializer.
type KVStateStore struct {
	kv         store.IStore
	serializer serializer.ISerializer
	keyPrefix  string
}

var (
	_ IStateStore      = (*KVStateStore)(nil)
	_ INamespaceLister = (*KVStateStore)(nil)
)

// NewKVStateStore creates a state store on top of kv. An empty keyPrefix
// selects DefaultKeyPrefix.
func NewKVStateStore(kv store.IStore, s serializer.ISerializer, keyPrefix string) *KVStateStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &KVStateStore{
		kv:         kv,
		serializer: s,
		keyPrefix:  keyPrefix,
	}
}

func (s *KVStateStore) Load(namespace string) (common.CounterState, bool, error) {
	data, found, err := s.kv.Get(s.keyPrefix + namespace)
	if err != nil || !found {
		return common.CounterState{}, false, err
	}

	var state common.CounterState
	if err := s.serializer.Deserialize(data, &state); err != nil {
		return common.CounterState{}, false, fmt.Errorf("decode state of %q: %w", namespace, err)
	}
	return state, true, nil
}

func (s *KVStateStore) Save(namespace string, state common.CounterState) error {
	data, err := s.serializer.Serialize(state)
	if err != nil {
		return fmt.Errorf("encode state of %q: %w", namespace, err)
	}
	return s.kv.Set(s.keyPrefix+namespace, data)
}

// Namespaces lists every namespace with a persisted state.
func (s *KVStateStore) Namespaces() ([]string, error) {
	keys, err := s.kv.Keys(s.keyPrefix)
	if err != nil {
		return nil, err
	}
	namespaces := make([]string, 0, len(keys))
	for _, k := range keys {
		namespaces = append(namespaces, strings.TrimPrefix(k, s.keyPrefix))
	}
	return namespaces, nil
}
