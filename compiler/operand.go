package compiler

import (
	"github.com/deepnoodle-ai/snakebyte/errors"
)

// MaxOperand is the largest value a two-byte operand can hold.
const MaxOperand = 0xFFFF

// Encode16 splits v into little-endian operand bytes. Values outside
// 0..MaxOperand wrap modulo 65536.
func Encode16(v int) (lo, hi byte) {
	return byte(v & 0xFF), byte((v >> 8) & 0xFF)
}

// Decode16 is the inverse of Encode16 for values in range.
func Decode16(lo, hi byte) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

// CheckOperand returns an error if v does not fit in a two-byte operand.
func CheckOperand(v int) error {
	if v < 0 || v > MaxOperand {
		return errors.Newf(errors.E2007, "operand %d does not fit in 16 bits", v)
	}
	return nil
}
