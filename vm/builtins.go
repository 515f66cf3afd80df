package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultBuiltins returns the builtin functions available to every unit.
func DefaultBuiltins() map[string]Value {
	return map[string]Value{
		"abs":   NewBuiltin("abs", builtinAbs),
		"int":   NewBuiltin("int", builtinInt),
		"len":   NewBuiltin("len", builtinLen),
		"max":   NewBuiltin("max", builtinMax),
		"min":   NewBuiltin("min", builtinMin),
		"print": NewBuiltin("print", builtinPrint),
		"range": NewBuiltin("range", builtinRange),
		"repr":  NewBuiltin("repr", builtinRepr),
		"str":   NewBuiltin("str", builtinStr),
	}
}

func exactArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s() takes exactly %d argument (%d given)", name, n, len(args))
	}
	return nil
}

func builtinPrint(vm *VirtualMachine, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = Str(arg)
	}
	if _, err := fmt.Fprintln(vm.stdout, strings.Join(parts, " ")); err != nil {
		return nil, err
	}
	return nil, nil
}

func builtinLen(vm *VirtualMachine, args []Value) (Value, error) {
	if err := exactArgs("len", args, 1); err != nil {
		return nil, err
	}
	return length(args[0])
}

func builtinStr(vm *VirtualMachine, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return Str(args[0]), nil
	}
	return nil, fmt.Errorf("str() takes at most 1 argument (%d given)", len(args))
}

func builtinRepr(vm *VirtualMachine, args []Value) (Value, error) {
	if err := exactArgs("repr", args, 1); err != nil {
		return nil, err
	}
	return Repr(args[0]), nil
}

func builtinInt(vm *VirtualMachine, args []Value) (Value, error) {
	if len(args) == 0 {
		return int64(0), nil
	}
	if err := exactArgs("int", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case int64:
		return v, nil
	case bool:
		i, _ := asInt(v)
		return i, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("cannot convert float %s to integer", Repr(v))
		}
		return int64(v), nil
	case string:
		i, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(v), "_", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal for int() with base 10: %s", Repr(v))
		}
		return i, nil
	}
	return nil, fmt.Errorf("int() argument must be a string or a number, not '%s'", typeName(args[0]))
}

func builtinAbs(vm *VirtualMachine, args []Value) (Value, error) {
	if err := exactArgs("abs", args, 1); err != nil {
		return nil, err
	}
	if i, ok := asInt(args[0]); ok {
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	if f, ok := args[0].(float64); ok {
		return math.Abs(f), nil
	}
	return nil, fmt.Errorf("bad operand type for abs(): '%s'", typeName(args[0]))
}

func builtinMin(vm *VirtualMachine, args []Value) (Value, error) {
	return extreme("min", args, -1)
}

func builtinMax(vm *VirtualMachine, args []Value) (Value, error) {
	return extreme("max", args, 1)
}

// extreme returns the first item whose ordering against the running result
// matches want.
func extreme(name string, args []Value, want int) (Value, error) {
	items := args
	if len(args) == 1 {
		it, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		items = nil
		for v, ok := it.next(); ok; v, ok = it.next() {
			items = append(items, v)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s() arg is an empty sequence", name)
	}
	result := items[0]
	for _, v := range items[1:] {
		c, err := compareOrder(v, result)
		if err != nil {
			return nil, err
		}
		if c == want {
			result = v
		}
	}
	return result, nil
}

func builtinRange(vm *VirtualMachine, args []Value) (Value, error) {
	ints := make([]int64, len(args))
	for i, arg := range args {
		v, ok := asInt(arg)
		if !ok {
			return nil, fmt.Errorf("'%s' object cannot be interpreted as an integer", typeName(arg))
		}
		ints[i] = v
	}
	switch len(ints) {
	case 1:
		return &Range{Start: 0, Stop: ints[0], Step: 1}, nil
	case 2:
		return &Range{Start: ints[0], Stop: ints[1], Step: 1}, nil
	case 3:
		if ints[2] == 0 {
			return nil, fmt.Errorf("range() arg 3 must not be zero")
		}
		return &Range{Start: ints[0], Stop: ints[1], Step: ints[2]}, nil
	}
	return nil, fmt.Errorf("range expected 1 to 3 arguments, got %d", len(args))
}
