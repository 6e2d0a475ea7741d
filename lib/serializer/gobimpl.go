package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() ISerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the ISerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(state common.CounterState) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, state *common.CounterState) error {
	*state = common.CounterState{}
	dec := gob.NewDecoder(bytes.NewBuffer(b))
	if err := dec.Decode(state); err != nil {
		return err
	}
	normalize(state)
	return nil
}
