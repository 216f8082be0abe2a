// internal/codec/codec.go
package codec

import (
	"errors"
	"fmt"
)

// NotAvailable is the wire pattern the heat pump reports for "no data" in a
// single-word register.
const NotAvailable = 0x8000

// ErrOutOfRange reports a value that is not a valid unsigned bit pattern for
// the requested width.
var ErrOutOfRange = errors.New("codec: value outside unsigned range")

// DecodeUnsigned concatenates raw bus words into one unsigned value, word 0 in
// the high bits. A nil slice or a length that does not match wordCount decodes
// to 0: the source data is unavailable, not malformed. The not-available
// pattern also decodes to 0.
func DecodeUnsigned(words []uint16, wordCount int) int64 {
	if words == nil || len(words) != wordCount {
		return 0
	}

	var v int64
	for _, w := range words {
		v = v<<16 | int64(w)
	}

	if v == NotAvailable {
		return 0
	}
	return v
}

// DecodeSigned interprets value as a two's-complement integer over bitWidth
// bits. The input must already be a valid unsigned pattern of that width;
// anything outside [0, 2^bitWidth-1] fails with ErrOutOfRange.
func DecodeSigned(value int64, bitWidth uint) (int64, error) {
	if bitWidth == 0 || bitWidth%16 != 0 || bitWidth > 48 {
		return 0, fmt.Errorf("codec: unsupported bit width %d", bitWidth)
	}

	max := int64(1)<<bitWidth - 1
	if value < 0 || value > max {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, value, max)
	}

	if value <= max>>1 {
		return value, nil
	}
	return value - (max + 1), nil
}

// ApplyScale converts a decoded register value into its physical unit.
// Kept as a named step: only temperature-like registers carry a scale other
// than 1, counters and setpoints never do.
func ApplyScale(value int64, scale float64) float64 {
	return float64(value) * scale
}
