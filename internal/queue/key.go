package queue

import "math/big"

// keyWidth is the width of a position-key in bytes: 16-byte big-endian
// integers with gap-based allocation.
const keyWidth = 16

// defaultStride is the gap left between consecutive keys so a later
// insertion between two existing entries never requires renumbering the
// rest of the queue.
var defaultStride = big.NewInt(1 << 32)

func encodeKey(v *big.Int) []byte {
	b := make([]byte, keyWidth)
	v.FillBytes(b)
	return b
}

func decodeKey(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// nextAfter returns a key stride past last (or the first stride-sized key
// if last is nil, i.e. the queue is empty).
func nextAfter(last []byte) []byte {
	if last == nil {
		return encodeKey(new(big.Int).Set(defaultStride))
	}
	v := decodeKey(last)
	v.Add(v, defaultStride)
	return encodeKey(v)
}
