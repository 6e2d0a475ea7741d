package serializer

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for size. The reclaim list is stored as ascending uvarint deltas.
func NewBinarySerializer() ISerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements ISerializer using a custom binary format
type binarySerializerImpl struct {
}

const binaryFormatVersion byte = 1

// Bit flags to indicate which optional fields are present
const (
	hasPrefix    byte = 1 << 0
	hasReclaimed byte = 1 << 1
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

// Layout:
//
//	[version:1][flags:1][next:8][hwm:8]
//	[prefixLen:2][prefix]          if hasPrefix
//	[count:uvarint][delta:uvarint]* if hasReclaimed
func (b binarySerializerImpl) Serialize(state common.CounterState) ([]byte, error) {
	if len(state.Prefix) > math.MaxUint16 {
		return nil, fmt.Errorf("prefix too long: %d bytes", len(state.Prefix))
	}

	result := make([]byte, 18, 18+2+len(state.Prefix)+binary.MaxVarintLen64*(len(state.Reclaimed)+1))
	result[0] = binaryFormatVersion

	var flags byte = 0

	binary.BigEndian.PutUint64(result[2:10], state.NextSequential)
	binary.BigEndian.PutUint64(result[10:18], state.HighWaterMark)

	// Handle Prefix
	if state.Prefix != "" {
		flags |= hasPrefix
		result = binary.BigEndian.AppendUint16(result, uint16(len(state.Prefix)))
		result = append(result, state.Prefix...)
	}

	// Handle Reclaimed (sorted copy, deltas to the previous value)
	if len(state.Reclaimed) > 0 {
		flags |= hasReclaimed
		sorted := slices.Clone(state.Reclaimed)
		slices.Sort(sorted)
		sorted = slices.Compact(sorted)

		result = binary.AppendUvarint(result, uint64(len(sorted)))
		var prev uint64
		for _, n := range sorted {
			result = binary.AppendUvarint(result, n-prev)
			prev = n
		}
	}

	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, state *common.CounterState) error {
	// Check minimum size (version + flags + next + hwm)
	if len(data) < 18 {
		return fmt.Errorf("data too short for counter header")
	}
	if data[0] != binaryFormatVersion {
		return fmt.Errorf("unsupported binary format version %d", data[0])
	}

	*state = common.CounterState{}
	flags := data[1]
	state.NextSequential = binary.BigEndian.Uint64(data[2:10])
	state.HighWaterMark = binary.BigEndian.Uint64(data[10:18])
	pos := 18

	// Read Prefix if present
	if flags&hasPrefix != 0 {
		if pos+2 > len(data) {
			return fmt.Errorf("data too short for prefix length")
		}
		prefixLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		pos += 2

		if pos+prefixLen > len(data) {
			return fmt.Errorf("data too short for prefix data")
		}
		state.Prefix = string(data[pos : pos+prefixLen])
		pos += prefixLen
	}

	// Read Reclaimed if present
	state.Reclaimed = []uint64{}
	if flags&hasReclaimed != 0 {
		count, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return fmt.Errorf("data too short for reclaim count")
		}
		pos += n

		// every entry needs at least one byte
		if count > uint64(len(data)-pos) {
			return fmt.Errorf("reclaim count %d exceeds remaining data", count)
		}

		state.Reclaimed = make([]uint64, 0, count)
		var prev uint64
		for i := uint64(0); i < count; i++ {
			delta, n := binary.Uvarint(data[pos:])
			if n <= 0 {
				return fmt.Errorf("data too short for reclaim entry %d", i)
			}
			pos += n
			prev += delta
			state.Reclaimed = append(state.Reclaimed, prev)
		}
	}

	if pos != len(data) {
		return fmt.Errorf("unexpected %d trailing bytes", len(data)-pos)
	}
	return nil
}
