package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Counter State (wire representation of one id namespace)
// --------------------------------------------------------------------------

// CounterState is the persisted form of one allocator namespace.
// Reclaimed is kept in ascending order; the allocator does not depend on the
// order but serializers and tests do.
type CounterState struct {
	// Prefix is the label in front of every issued identifier (e.g. "JD").
	Prefix string `json:"prefix"`
	// NextSequential is the smallest sequential integer never issued yet (>= 1).
	NextSequential uint64 `json:"next_sequential"`
	// HighWaterMark is the largest sequential integer ever issued.
	HighWaterMark uint64 `json:"high_water_mark"`
	// Reclaimed holds freed integers that may be issued again.
	Reclaimed []uint64 `json:"reclaimed"`
}

// DefaultCounterState returns the state of a namespace that never issued an id.
func DefaultCounterState(prefix string) CounterState {
	return CounterState{
		Prefix:         prefix,
		NextSequential: 1,
		HighWaterMark:  0,
		Reclaimed:      []uint64{},
	}
}

// String returns a compact representation used in log lines and the CLI.
func (s CounterState) String() string {
	reclaimed := make([]string, len(s.Reclaimed))
	for i, n := range s.Reclaimed {
		reclaimed[i] = strconv.FormatUint(n, 10)
	}
	return fmt.Sprintf("prefix=%s next=%d hwm=%d reclaimed=[%s]",
		s.Prefix, s.NextSequential, s.HighWaterMark, strings.Join(reclaimed, ","))
}
