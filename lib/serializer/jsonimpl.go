package serializer

import (
	"encoding/json"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() ISerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the ISerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(state common.CounterState) ([]byte, error) {
	normalize(&state)
	return json.Marshal(state)
}

func (j jsonSerializerImpl) Deserialize(b []byte, state *common.CounterState) error {
	*state = common.CounterState{}
	if err := json.Unmarshal(b, state); err != nil {
		return err
	}
	normalize(state)
	return nil
}
