package idalloc

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
	"github.com/jasonrodrigues28/product-landing-page/lib/idalloc/internal"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("idalloc")

// counter is the in-memory state of one namespace. All fields are guarded by mu.
type counter struct {
	mu     sync.Mutex
	prefix string
	next   uint64
	hwm    uint64
	pool   *internal.ReclaimPool
}

func newCounter(state common.CounterState) *counter {
	c := &counter{
		prefix: state.Prefix,
		next:   max(state.NextSequential, state.HighWaterMark+1, 1),
		hwm:    state.HighWaterMark,
		pool:   internal.NewReclaimPool(),
	}
	for _, n := range state.Reclaimed {
		// numbers that were never issued must not be reissued from the pool
		if n > 0 && n < c.next {
			c.pool.Add(n)
		}
	}
	return c
}

func (c *counter) snapshot() common.CounterState {
	return common.CounterState{
		Prefix:         c.prefix,
		NextSequential: c.next,
		HighWaterMark:  c.hwm,
		Reclaimed:      c.pool.Sorted(),
	}
}

func (c *counter) reset() {
	c.next = 1
	c.hwm = 0
	c.pool.Clear()
}

// free adds the suffix of id to the pool and reports whether the state changed.
func (c *counter) free(id string) bool {
	prefix, n, ok := ParseIdentifier(id)
	if !ok {
		return false
	}
	if c.prefix != "" && prefix != c.prefix {
		return false
	}
	if n >= c.next {
		return false
	}
	return c.pool.Add(n)
}

// Allocator implements IAllocator. Namespaces are independent of each other;
// operations on the same namespace are serialized.
type Allocator struct {
	states   IStateStore
	counters *xsync.MapOf[string, *counter]
	opts     options
}

var _ IAllocator = (*Allocator)(nil)

// New creates an allocator persisting through states.
func New(states IStateStore, opts ...Option) *Allocator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Allocator{
		states:   states,
		counters: xsync.NewMapOf[string, *counter](),
		opts:     o,
	}
}

// counterFor returns the counter of namespace, loading it from the state store
// if it is not in memory yet. If the namespace is unknown and initial is nil,
// counterFor returns nil. Otherwise the namespace is created from initial() and
// created reports whether this call created it.
func (a *Allocator) counterFor(namespace string, initial func() common.CounterState) (c *counter, created bool, err error) {
	if namespace == "" {
		return nil, false, ErrInvalidNamespace
	}
	if c, ok := a.counters.Load(namespace); ok {
		return c, false, nil
	}

	state, found, err := a.states.Load(namespace)
	if err != nil {
		return nil, false, fmt.Errorf("idalloc: load namespace %q: %w", namespace, err)
	}
	if !found {
		if initial == nil {
			return nil, false, nil
		}
		state = initial()
	}

	c, loaded := a.counters.LoadOrStore(namespace, newCounter(state))
	if !loaded && found {
		Logger.Debugf("loaded namespace %s: %s", namespace, state)
	}
	return c, !loaded && !found, nil
}

func (a *Allocator) defaultState(namespace string) func() common.CounterState {
	return func() common.CounterState {
		return common.DefaultCounterState(a.opts.prefixFunc(namespace))
	}
}

// save persists the state of c. The caller must hold c.mu.
func (a *Allocator) save(namespace string, c *counter) error {
	if err := a.states.Save(namespace, c.snapshot()); err != nil {
		persistErrors.Inc()
		Logger.Warningf("failed to persist namespace %s: %v", namespace, err)
		return fmt.Errorf("idalloc: persist namespace %q: %w", namespace, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see idalloc/interface.go)
// --------------------------------------------------------------------------

func (a *Allocator) Allocate(namespace string) (string, error) {
	c, _, err := a.counterFor(namespace, a.defaultState(namespace))
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prefix == "" {
		c.prefix = a.opts.prefixFunc(namespace)
	}

	n, reused := c.pool.PopMin()
	if reused {
		allocatedReused.Inc()
	} else {
		n = c.next
		c.next++
		c.hwm = max(c.hwm, n)
		allocatedFresh.Inc()
	}

	id := FormatIdentifier(c.prefix, n)
	Logger.Debugf("allocated %s in namespace %s (reused=%v)", id, namespace, reused)
	return id, a.save(namespace, c)
}

func (a *Allocator) Free(namespace, id string) error {
	return a.FreeMany(namespace, []string{id})
}

func (a *Allocator) FreeMany(namespace string, ids []string) error {
	c, _, err := a.counterFor(namespace, nil)
	if err != nil || c == nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	changed := 0
	for _, id := range ids {
		if c.free(id) {
			changed++
		} else {
			Logger.Debugf("ignoring free of %q in namespace %s", id, namespace)
		}
	}
	if changed == 0 {
		return nil
	}

	freedTotal.Add(changed)
	return a.save(namespace, c)
}

func (a *Allocator) Reset(namespace string) error {
	c, _, err := a.counterFor(namespace, a.defaultState(namespace))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	resetsTotal.Inc()
	Logger.Infof("reset namespace %s", namespace)
	return a.save(namespace, c)
}

func (a *Allocator) RebuildFromExisting(namespace string, existing []string) error {
	c, _, err := a.counterFor(namespace, func() common.CounterState {
		for _, id := range existing {
			if prefix, _, ok := ParseIdentifier(id); ok && validPrefix(prefix) {
				return common.DefaultCounterState(prefix)
			}
		}
		return common.DefaultCounterState(a.opts.prefixFunc(namespace))
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var hwm uint64
	present := make([]uint64, 0, len(existing))
	for _, id := range existing {
		prefix, n, ok := ParseIdentifier(id)
		if !ok || (c.prefix != "" && prefix != c.prefix) {
			continue
		}
		present = append(present, n)
		hwm = max(hwm, n)
	}

	c.hwm = hwm
	c.next = hwm + 1
	for _, n := range present {
		c.pool.Remove(n)
	}
	// pool entries above the new high water mark would collide with the
	// sequential numbers issued next
	if dropped := c.pool.RemoveFrom(c.next); dropped > 0 {
		Logger.Debugf("dropped %d reclaimed numbers above %d in namespace %s", dropped, hwm, namespace)
	}

	rebuildsTotal.Inc()
	Logger.Infof("rebuilt namespace %s from %d identifiers: hwm=%d", namespace, len(present), hwm)
	return a.save(namespace, c)
}

func (a *Allocator) Ensure(namespace, prefix string) error {
	if !validPrefix(prefix) {
		return ErrInvalidPrefix
	}
	c, created, err := a.counterFor(namespace, func() common.CounterState {
		return common.DefaultCounterState(prefix)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case created:
		Logger.Debugf("created namespace %s with prefix %s", namespace, prefix)
	case c.prefix == "":
		c.prefix = prefix
	default:
		return nil
	}
	return a.save(namespace, c)
}

func (a *Allocator) State(namespace string) (common.CounterState, error) {
	c, _, err := a.counterFor(namespace, nil)
	if err != nil {
		return common.CounterState{}, err
	}
	if c == nil {
		return a.defaultState(namespace)(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(), nil
}

func (a *Allocator) Peek(namespace string) (string, error) {
	c, _, err := a.counterFor(namespace, nil)
	if err != nil {
		return "", err
	}
	if c == nil {
		return FormatIdentifier(a.opts.prefixFunc(namespace), 1), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.pool.Min(); ok {
		return FormatIdentifier(c.prefix, n), nil
	}
	return FormatIdentifier(c.prefix, c.next), nil
}

func (a *Allocator) Namespaces() []string {
	namespaces := make([]string, 0, a.counters.Size())
	a.counters.Range(func(key string, _ *counter) bool {
		namespaces = append(namespaces, key)
		return true
	})
	if lister, ok := a.states.(INamespaceLister); ok {
		persisted, err := lister.Namespaces()
		if err != nil {
			Logger.Warningf("failed to list persisted namespaces: %v", err)
		}
		namespaces = append(namespaces, persisted...)
	}
	slices.Sort(namespaces)
	return slices.Compact(namespaces)
}
