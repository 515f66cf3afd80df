// Package vm executes assembled units. It is a reference interpreter for the
// subset of the instruction set that snakebyte programs typically use, and
// exists so assembled output can be checked without an external runtime.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/op"
)

const (
	MaxStackDepth = 1024
	MaxBlockDepth = 20

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// unbound marks a local slot that has not been assigned.
type unboundValue struct{}

var unbound = &unboundValue{}

type block struct {
	end   int
	level int
}

// VirtualMachine runs a single unit. It is not safe for concurrent use.
type VirtualMachine struct {
	unit     *bytecode.Unit
	table    *op.Table
	code     []byte
	ip       int
	stack    []Value
	locals   []Value
	globals  map[string]Value
	builtins map[string]Value
	blocks   []block
	stdout   io.Writer
	running  bool

	contextCheckInterval int
	observer             Observer
}

// New returns a virtual machine ready to run the given unit.
func New(unit *bytecode.Unit, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		unit:                 unit,
		table:                op.Default(),
		code:                 unit.Code(),
		stack:                make([]Value, 0, max(unit.StackSize(), 8)),
		locals:               make([]Value, unit.VarNameCount()),
		globals:              map[string]Value{},
		builtins:             DefaultBuiltins(),
		stdout:               os.Stdout,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for i := range vm.locals {
		vm.locals[i] = unbound
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

// Run executes the unit from its first instruction and returns the value
// passed to RETURN_VALUE, or nil if execution falls off the end of the code.
func (vm *VirtualMachine) Run(ctx context.Context) (result Value, err error) {
	if vm.running {
		return nil, fmt.Errorf("vm is already running")
	}
	vm.running = true
	vm.ip = 0
	vm.stack = vm.stack[:0]
	vm.blocks = vm.blocks[:0]
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &errors.RuntimeError{
				Message: fmt.Sprintf("panic: %v", r),
				Offset:  vm.ip,
				Opcode:  vm.opcodeName(vm.ip),
			}
		}
		vm.running = false
	}()
	return vm.eval(ctx)
}

// Stdout returns the writer used by print and PRINT_EXPR.
func (vm *VirtualMachine) Stdout() io.Writer {
	return vm.stdout
}

// Global returns the value of a global variable.
func (vm *VirtualMachine) Global(name string) (Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// Globals returns a copy of the global variables.
func (vm *VirtualMachine) Globals() map[string]Value {
	out := make(map[string]Value, len(vm.globals))
	for k, v := range vm.globals {
		out[k] = v
	}
	return out
}

// Local returns the value of a local variable by name.
func (vm *VirtualMachine) Local(name string) (Value, bool) {
	for i := 0; i < vm.unit.VarNameCount(); i++ {
		if vm.unit.VarNameAt(i) == name {
			if vm.locals[i] == unbound {
				return nil, false
			}
			return vm.locals[i], true
		}
	}
	return nil, false
}

// TOS returns the top of the stack.
func (vm *VirtualMachine) TOS() (Value, bool) {
	if len(vm.stack) == 0 {
		return nil, false
	}
	return vm.stack[len(vm.stack)-1], true
}

func (vm *VirtualMachine) opcodeName(offset int) string {
	if offset < 0 || offset >= len(vm.code) {
		return ""
	}
	info := vm.table.Get(op.Code(vm.code[offset]))
	if !info.IsValid() {
		return fmt.Sprintf("<%d>", vm.code[offset])
	}
	return info.Name
}

func (vm *VirtualMachine) push(v Value) error {
	if len(vm.stack) >= MaxStackDepth {
		return fmt.Errorf("stack overflow")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VirtualMachine) pop() Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack[n] = nil
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VirtualMachine) popN(n int) []Value {
	start := len(vm.stack) - n
	items := make([]Value, n)
	copy(items, vm.stack[start:])
	for i := start; i < len(vm.stack); i++ {
		vm.stack[i] = nil
	}
	vm.stack = vm.stack[:start]
	return items
}

func (vm *VirtualMachine) top() Value {
	return vm.stack[len(vm.stack)-1]
}

// lookupName resolves a name against globals and then builtins.
func (vm *VirtualMachine) lookupName(name string) (Value, error) {
	if v, ok := vm.globals[name]; ok {
		return v, nil
	}
	if v, ok := vm.builtins[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("name '%s' is not defined", name)
}
