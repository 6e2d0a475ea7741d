// Package serializer encodes the persisted state of an id namespace
// (common.CounterState) for storage in any store.IStore backend.
//
// Implementations:
//
//   - binarySerializerImpl: compact custom format. Fixed header with the
//     counters, length-prefixed prefix, and the reclaim list as ascending
//     uvarint deltas, which keeps long reuse pools small.
//
//   - jsonSerializerImpl: human-readable; the reclaim list is an ordered JSON
//     array. Useful when the store is inspected by hand (file store).
//
//   - gobSerializerImpl: Go's gob encoding.
//
// All serializers are stateless and safe for concurrent use. Decoded states
// always carry a non-nil Reclaimed slice.
//
// Usage:
//
//	s, err := serializer.New("binary")
//	data, err := s.Serialize(state)
//	var restored common.CounterState
//	err = s.Deserialize(data, &restored)
package serializer
