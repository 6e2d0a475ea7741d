package idalloc

import (
	"errors"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IAllocator issues identifiers of the form "<prefix>-<n>" per namespace and
// recycles freed ones. Freed numbers are reissued smallest first before any
// new sequential number is used.
//
// Every mutating operation persists the namespace state through the
// IStateStore. A persistence error is returned to the caller but the in-memory
// mutation stays applied.
type IAllocator interface {
	// Allocate returns the next identifier of namespace. The namespace is
	// created lazily. On a persistence error the identifier is still returned
	// together with the error.
	Allocate(namespace string) (id string, err error)
	// Free makes the numeric suffix of id available again. Malformed
	// identifiers, identifiers of a foreign prefix and numbers never issued
	// are ignored. While the namespace has no prefix yet, any prefix is
	// accepted. Free on an unknown namespace does nothing.
	Free(namespace, id string) (err error)
	// FreeMany frees every identifier and persists once.
	FreeMany(namespace string, ids []string) (err error)
	// Reset returns namespace to its initial state.
	Reset(namespace string) (err error)
	// RebuildFromExisting resynchronizes namespace with the identifiers that
	// currently exist (e.g. after a reload from a remote source).
	RebuildFromExisting(namespace string, existing []string) (err error)
	// Ensure creates namespace with prefix if it does not exist yet. The prefix
	// of an existing namespace is never changed.
	Ensure(namespace, prefix string) (err error)
	// State returns a snapshot of the namespace state without creating it.
	State(namespace string) (state common.CounterState, err error)
	// Peek returns the identifier the next Allocate would issue.
	Peek(namespace string) (id string, err error)
	// Namespaces lists the namespaces known to this allocator, sorted. This
	// includes persisted namespaces if the state store is an INamespaceLister.
	Namespaces() (namespaces []string)
}

// IStateStore loads and saves the state of single namespaces. Load reports
// found=false for a namespace that was never saved.
type IStateStore interface {
	Load(namespace string) (state common.CounterState, found bool, err error)
	Save(namespace string, state common.CounterState) (err error)
}

// INamespaceLister is implemented by state stores that can enumerate the
// namespaces they hold.
type INamespaceLister interface {
	Namespaces() (namespaces []string, err error)
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrInvalidNamespace is returned for the empty namespace.
	ErrInvalidNamespace = errors.New("idalloc: namespace must not be empty")
	// ErrInvalidPrefix is returned by Ensure for an unusable prefix.
	ErrInvalidPrefix = errors.New("idalloc: prefix must be non-empty and contain no whitespace")
)
