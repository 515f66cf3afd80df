package vm

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/snakebyte/literal"
)

// Value is a runtime value. Constants keep their literal types (int64,
// float64, string, []byte, bool, nil, literal.Tuple, literal.List); the VM
// adds *Builtin, *Range and iterators.
type Value = any

// BuiltinFunc implements a builtin function.
type BuiltinFunc func(vm *VirtualMachine, args []Value) (Value, error)

// Builtin is a callable provided by the host.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

// NewBuiltin returns a builtin with the given name.
func NewBuiltin(name string, fn BuiltinFunc) *Builtin {
	return &Builtin{Name: name, Fn: fn}
}

// Range is the value returned by range().
type Range struct {
	Start, Stop, Step int64
}

// Len returns the number of values in the range.
func (r *Range) Len() int64 {
	switch {
	case r.Step > 0 && r.Start < r.Stop:
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	case r.Step < 0 && r.Start > r.Stop:
		return (r.Start - r.Stop - r.Step - 1) / -r.Step
	}
	return 0
}

// iterator is produced by GET_ITER and consumed by FOR_ITER.
type iterator struct {
	next func() (Value, bool)
}

func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case *Builtin:
		return "builtin_function_or_method"
	case *Range:
		return "range"
	case *iterator:
		return "iterator"
	default:
		return literal.TypeName(v)
	}
}

// Repr returns the printable representation of a value.
func Repr(v Value) string {
	switch v := v.(type) {
	case *Builtin:
		return fmt.Sprintf("<built-in function %s>", v.Name)
	case *Range:
		if v.Step == 1 {
			return fmt.Sprintf("range(%d, %d)", v.Start, v.Stop)
		}
		return fmt.Sprintf("range(%d, %d, %d)", v.Start, v.Stop, v.Step)
	case *iterator:
		return "<iterator>"
	case literal.Tuple:
		if len(v) == 1 {
			return "(" + Repr(v[0]) + ",)"
		}
		return "(" + joinRepr(v) + ")"
	case literal.List:
		return "[" + joinRepr(v) + "]"
	default:
		return literal.Repr(v)
	}
}

func joinRepr(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Repr(item)
	}
	return strings.Join(parts, ", ")
}

// Str returns the value as print() shows it.
func Str(v Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Repr(v)
}

func truthy(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case []byte:
		return len(v) > 0
	case literal.Tuple:
		return len(v) > 0
	case literal.List:
		return len(v) > 0
	case *Range:
		return v.Len() > 0
	}
	return true
}

func iterate(v Value) (*iterator, error) {
	var items []Value
	switch v := v.(type) {
	case *iterator:
		return v, nil
	case literal.Tuple:
		items = v
	case literal.List:
		items = v
	case string:
		for _, r := range v {
			items = append(items, string(r))
		}
	case []byte:
		for _, b := range v {
			items = append(items, int64(b))
		}
	case *Range:
		cur, n := v.Start, v.Len()
		var i int64
		return &iterator{next: func() (Value, bool) {
			if i >= n {
				return nil, false
			}
			out := cur
			cur += v.Step
			i++
			return out, true
		}}, nil
	default:
		return nil, fmt.Errorf("'%s' object is not iterable", typeName(v))
	}
	i := 0
	return &iterator{next: func() (Value, bool) {
		if i >= len(items) {
			return nil, false
		}
		i++
		return items[i-1], true
	}}, nil
}

func length(v Value) (int64, error) {
	switch v := v.(type) {
	case string:
		return int64(len([]rune(v))), nil
	case []byte:
		return int64(len(v)), nil
	case literal.Tuple:
		return int64(len(v)), nil
	case literal.List:
		return int64(len(v)), nil
	case *Range:
		return v.Len(), nil
	}
	return 0, fmt.Errorf("object of type '%s' has no len()", typeName(v))
}
