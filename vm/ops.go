package vm

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/deepnoodle-ai/snakebyte/literal"
	"github.com/deepnoodle-ai/snakebyte/op"
)

var binarySymbols = map[op.Code]string{
	op.BinaryPower:       "**",
	op.BinaryMultiply:    "*",
	op.BinaryModulo:      "%",
	op.BinaryAdd:         "+",
	op.BinarySubtract:    "-",
	op.BinaryFloorDivide: "//",
	op.BinaryTrueDivide:  "/",
	op.InplaceAdd:        "+",
	op.InplaceSubtract:   "-",
	op.InplaceMultiply:   "*",
	op.BinaryLShift:      "<<",
	op.BinaryRShift:      ">>",
	op.BinaryAnd:         "&",
	op.BinaryXor:         "^",
	op.BinaryOr:          "|",
}

// asInt returns the integer value of ints and bools.
func asInt(v Value) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// asFloat returns the numeric value of ints, bools and floats.
func asFloat(v Value) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func binaryOp(code op.Code, a, b Value) (Value, error) {
	sym := binarySymbols[code]
	x, xInt := asInt(a)
	y, yInt := asInt(b)
	if xInt && yInt {
		return intOp(sym, x, y)
	}
	fx, xNum := asFloat(a)
	fy, yNum := asFloat(b)
	if xNum && yNum {
		return floatOp(sym, fx, fy, a, b)
	}
	if v, ok, err := sequenceOp(sym, a, b); ok {
		return v, err
	}
	return nil, fmt.Errorf("unsupported operand type(s) for %s: '%s' and '%s'",
		sym, typeName(a), typeName(b))
}

func intOp(sym string, x, y int64) (Value, error) {
	switch sym {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return float64(x) / float64(y), nil
	case "//":
		if y == 0 {
			return nil, fmt.Errorf("integer division or modulo by zero")
		}
		return floorDiv(x, y), nil
	case "%":
		if y == 0 {
			return nil, fmt.Errorf("integer division or modulo by zero")
		}
		return x - floorDiv(x, y)*y, nil
	case "**":
		if y < 0 {
			return math.Pow(float64(x), float64(y)), nil
		}
		result := int64(1)
		for base, exp := x, y; exp > 0; exp >>= 1 {
			if exp&1 == 1 {
				result *= base
			}
			base *= base
		}
		return result, nil
	case "<<":
		if y < 0 {
			return nil, fmt.Errorf("negative shift count")
		}
		if y >= 64 {
			return int64(0), nil
		}
		return x << uint(y), nil
	case ">>":
		if y < 0 {
			return nil, fmt.Errorf("negative shift count")
		}
		if y >= 64 {
			y = 63
		}
		return x >> uint(y), nil
	case "&":
		return x & y, nil
	case "|":
		return x | y, nil
	case "^":
		return x ^ y, nil
	}
	return nil, fmt.Errorf("unsupported operand type(s) for %s: 'int' and 'int'", sym)
}

func floorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func floatOp(sym string, x, y float64, a, b Value) (Value, error) {
	switch sym {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return nil, fmt.Errorf("float division by zero")
		}
		return x / y, nil
	case "//":
		if y == 0 {
			return nil, fmt.Errorf("float divmod()")
		}
		return math.Floor(x / y), nil
	case "%":
		if y == 0 {
			return nil, fmt.Errorf("float modulo")
		}
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return m, nil
	case "**":
		return math.Pow(x, y), nil
	}
	return nil, fmt.Errorf("unsupported operand type(s) for %s: '%s' and '%s'",
		sym, typeName(a), typeName(b))
}

// sequenceOp handles concatenation and repetition.
func sequenceOp(sym string, a, b Value) (Value, bool, error) {
	switch sym {
	case "+":
		switch a := a.(type) {
		case string:
			if b, ok := b.(string); ok {
				return a + b, true, nil
			}
		case []byte:
			if b, ok := b.([]byte); ok {
				return append(append([]byte{}, a...), b...), true, nil
			}
		case literal.Tuple:
			if b, ok := b.(literal.Tuple); ok {
				return append(append(literal.Tuple{}, a...), b...), true, nil
			}
		case literal.List:
			if b, ok := b.(literal.List); ok {
				return append(append(literal.List{}, a...), b...), true, nil
			}
		}
	case "*":
		if n, ok := asInt(b); ok {
			return repeat(a, n)
		}
		if n, ok := asInt(a); ok {
			return repeat(b, n)
		}
	}
	return nil, false, nil
}

func repeat(v Value, n int64) (Value, bool, error) {
	if n < 0 {
		n = 0
	}
	const limit = 1 << 24
	switch v := v.(type) {
	case string:
		if int64(len(v))*n > limit {
			return nil, true, fmt.Errorf("repeated string is too large")
		}
		return strings.Repeat(v, int(n)), true, nil
	case []byte:
		if int64(len(v))*n > limit {
			return nil, true, fmt.Errorf("repeated bytes are too large")
		}
		return bytes.Repeat(v, int(n)), true, nil
	case literal.Tuple:
		out, err := repeatItems(v, n, limit)
		return literal.Tuple(out), true, err
	case literal.List:
		out, err := repeatItems(v, n, limit)
		return literal.List(out), true, err
	}
	return nil, false, nil
}

func repeatItems(items []Value, n, limit int64) ([]Value, error) {
	if int64(len(items))*n > limit {
		return nil, fmt.Errorf("repeated sequence is too large")
	}
	out := make([]Value, 0, int64(len(items))*n)
	for i := int64(0); i < n; i++ {
		out = append(out, items...)
	}
	return out, nil
}

func unaryOp(code op.Code, v Value) (Value, error) {
	switch code {
	case op.UnaryNot:
		return !truthy(v), nil
	case op.UnaryPositive, op.UnaryNegative:
		if i, ok := asInt(v); ok {
			if code == op.UnaryNegative {
				return -i, nil
			}
			return i, nil
		}
		if f, ok := v.(float64); ok {
			if code == op.UnaryNegative {
				return -f, nil
			}
			return f, nil
		}
		sym := "+"
		if code == op.UnaryNegative {
			sym = "-"
		}
		return nil, fmt.Errorf("bad operand type for unary %s: '%s'", sym, typeName(v))
	case op.UnaryInvert:
		if i, ok := asInt(v); ok {
			return ^i, nil
		}
		return nil, fmt.Errorf("bad operand type for unary ~: '%s'", typeName(v))
	}
	return nil, fmt.Errorf("unknown unary operation %d", code)
}

// equal compares values with numeric promotion, so 1 == 1.0 == True.
func equal(a, b Value) bool {
	if x, ok := asFloat(a); ok {
		if y, ok := asFloat(b); ok {
			return x == y
		}
		return false
	}
	switch a := a.(type) {
	case literal.Tuple:
		b, ok := b.(literal.Tuple)
		return ok && equalItems(a, b)
	case literal.List:
		b, ok := b.(literal.List)
		return ok && equalItems(a, b)
	case *Builtin, *Range, *iterator:
		return a == b
	}
	return literal.Equal(a, b)
}

func equalItems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// compareOrder returns -1, 0 or 1 for orderable values.
func compareOrder(a, b Value) (int, error) {
	if x, ok := asFloat(a); ok {
		if y, ok := asFloat(b); ok {
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			}
			return 0, nil
		}
	}
	switch a := a.(type) {
	case string:
		if b, ok := b.(string); ok {
			return strings.Compare(a, b), nil
		}
	case []byte:
		if b, ok := b.([]byte); ok {
			return bytes.Compare(a, b), nil
		}
	case literal.Tuple:
		if b, ok := b.(literal.Tuple); ok {
			return compareItems(a, b)
		}
	case literal.List:
		if b, ok := b.(literal.List); ok {
			return compareItems(a, b)
		}
	}
	return 0, fmt.Errorf("'<' not supported between instances of '%s' and '%s'",
		typeName(a), typeName(b))
}

func compareItems(a, b []Value) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if equal(a[i], b[i]) {
			continue
		}
		return compareOrder(a[i], b[i])
	}
	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	}
	return 0, nil
}

func contains(container, item Value) (bool, error) {
	switch c := container.(type) {
	case string:
		s, ok := item.(string)
		if !ok {
			return false, fmt.Errorf("'in <string>' requires string as left operand, not %s", typeName(item))
		}
		return strings.Contains(c, s), nil
	case []byte:
		switch item := item.(type) {
		case []byte:
			return bytes.Contains(c, item), nil
		case int64:
			return item >= 0 && item < 256 && bytes.IndexByte(c, byte(item)) >= 0, nil
		}
		return false, fmt.Errorf("a bytes-like object is required, not '%s'", typeName(item))
	case *Range:
		i, ok := asInt(item)
		if !ok {
			return false, nil
		}
		if c.Step > 0 && (i < c.Start || i >= c.Stop) || c.Step < 0 && (i > c.Start || i <= c.Stop) {
			return false, nil
		}
		return (i-c.Start)%c.Step == 0, nil
	}
	var items []Value
	switch c := container.(type) {
	case literal.Tuple:
		items = c
	case literal.List:
		items = c
	default:
		return false, fmt.Errorf("argument of type '%s' is not iterable", typeName(container))
	}
	for _, v := range items {
		if equal(v, item) {
			return true, nil
		}
	}
	return false, nil
}

// identical implements "is". Lists and bytes are identical only when they
// share storage; other values compare by type and value.
func identical(a, b Value) bool {
	switch a := a.(type) {
	case literal.List, []byte:
		return sameBacking(a, b)
	case *Builtin, *Range, *iterator:
		return a == b
	}
	return literal.Equal(a, b)
}

func sameBacking(a, b Value) bool {
	switch a := a.(type) {
	case literal.List:
		b, ok := b.(literal.List)
		return ok && len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
	case []byte:
		b, ok := b.([]byte)
		return ok && len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
	}
	return false
}

func compareOp(cmp op.CompareOpType, a, b Value) (Value, error) {
	switch cmp {
	case op.Equal:
		return equal(a, b), nil
	case op.NotEqual:
		return !equal(a, b), nil
	case op.LessThan, op.LessThanOrEqual, op.GreaterThan, op.GreaterThanOrEqual:
		if x, ok := asFloat(a); ok && math.IsNaN(x) {
			return false, nil
		}
		if y, ok := asFloat(b); ok && math.IsNaN(y) {
			return false, nil
		}
		c, err := compareOrder(a, b)
		if err != nil {
			return nil, err
		}
		switch cmp {
		case op.LessThan:
			return c < 0, nil
		case op.LessThanOrEqual:
			return c <= 0, nil
		case op.GreaterThan:
			return c > 0, nil
		}
		return c >= 0, nil
	case op.In:
		return contains(b, a)
	case op.NotIn:
		found, err := contains(b, a)
		return !found, err
	case op.Is:
		return identical(a, b), nil
	case op.IsNot:
		return !identical(a, b), nil
	}
	return nil, fmt.Errorf("unsupported comparison %q", cmp.String())
}

func subscript(container, index Value) (Value, error) {
	if s, ok := container.(string); ok {
		runes := []rune(s)
		i, err := normalizeIndex(index, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return string(runes[i]), nil
	}
	if b, ok := container.([]byte); ok {
		i, err := normalizeIndex(index, len(b), "index")
		if err != nil {
			return nil, err
		}
		return int64(b[i]), nil
	}
	var items []Value
	name := "tuple"
	switch c := container.(type) {
	case literal.Tuple:
		items = c
	case literal.List:
		items, name = c, "list"
	default:
		return nil, fmt.Errorf("'%s' object is not subscriptable", typeName(container))
	}
	i, err := normalizeIndex(index, len(items), name)
	if err != nil {
		return nil, err
	}
	return items[i], nil
}

func normalizeIndex(index Value, n int, what string) (int, error) {
	i, ok := asInt(index)
	if !ok {
		return 0, fmt.Errorf("%s indices must be integers, not %s", what, typeName(index))
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, fmt.Errorf("%s index out of range", what)
	}
	return int(i), nil
}
