package literal

import (
	"fmt"

	"github.com/deepnoodle-ai/snakebyte/errors"
)

// Int evaluates text as an integer literal.
func Int(text string) (int64, error) {
	v, err := Parse(text)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int64)
	if !ok {
		return 0, &errors.LiteralError{
			Code:    errors.E1003,
			Message: fmt.Sprintf("expected an integer, got %s", TypeName(v)),
			Text:    text,
		}
	}
	return i, nil
}

// Bytes evaluates text as a byte sequence: a bytes literal, or a list or
// tuple of integers in the range 0..255.
func Bytes(text string) ([]byte, error) {
	v, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return ToBytes(v)
}

// ToBytes converts an evaluated literal to a byte sequence.
func ToBytes(v Value) ([]byte, error) {
	var items []Value
	switch v := v.(type) {
	case []byte:
		return append([]byte{}, v...), nil
	case List:
		items = v
	case Tuple:
		items = v
	default:
		return nil, fmt.Errorf("expected bytes or a sequence of integers, got %s", TypeName(v))
	}
	out := make([]byte, len(items))
	for i, item := range items {
		n, ok := item.(int64)
		if !ok {
			return nil, fmt.Errorf("item %d: expected an integer, got %s", i, TypeName(item))
		}
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("item %d: byte must be in range(0, 256), got %d", i, n)
		}
		out[i] = byte(n)
	}
	return out, nil
}
