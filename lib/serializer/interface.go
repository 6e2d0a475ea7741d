package serializer

import "github.com/jasonrodrigues28/product-landing-page/lib/common"

// ISerializer is the interface for all counter state serializers
type ISerializer interface {
	// Serialize serializes a CounterState into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(state common.CounterState) ([]byte, error)
	// Deserialize deserializes a byte array into a CounterState
	// It takes a byte array and a pointer to a CounterState as parameters
	// It returns an error if any
	Deserialize(b []byte, state *common.CounterState) error
}

// New returns the serializer registered under name (json, gob, binary).
func New(name string) (ISerializer, error) {
	switch name {
	case "json":
		return NewJSONSerializer(), nil
	case "gob":
		return NewGOBSerializer(), nil
	case "binary":
		return NewBinarySerializer(), nil
	default:
		return nil, &UnknownSerializerError{Name: name}
	}
}

// UnknownSerializerError is returned by New for unregistered names.
type UnknownSerializerError struct {
	Name string
}

func (e *UnknownSerializerError) Error() string {
	return "invalid serializer " + e.Name + " (expected one of: json, gob, binary)"
}

// normalize makes decoded states comparable regardless of the codec:
// an absent reclaim list decodes to an empty, non-nil slice.
func normalize(state *common.CounterState) {
	if state.Reclaimed == nil {
		state.Reclaimed = []uint64{}
	}
}
