package bytecode

import "github.com/deepnoodle-ai/snakebyte/literal"

// copyStrings returns a copy of the given string slice.
func copyStrings(src []string) []string {
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// copyBytes returns a copy of the given byte slice.
func copyBytes(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// copyConstants returns a deep copy of the given constants.
func copyConstants(src []literal.Value) []literal.Value {
	dst := make([]literal.Value, len(src))
	for i, c := range src {
		dst[i] = copyConstant(c)
	}
	return dst
}

// copyConstant deep-copies the mutable constant types.
func copyConstant(c literal.Value) literal.Value {
	switch v := c.(type) {
	case []byte:
		return copyBytes(v)
	case literal.Tuple:
		return literal.Tuple(copyConstants(v))
	case literal.List:
		return literal.List(copyConstants(v))
	default:
		return c
	}
}
