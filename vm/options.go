package vm

import (
	"io"

	"github.com/deepnoodle-ai/snakebyte/op"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithGlobals provides global variables with the given names.
func WithGlobals(globals map[string]any) Option {
	return func(vm *VirtualMachine) {
		for name, value := range globals {
			vm.globals[name] = value
		}
	}
}

// WithBuiltins replaces the builtin functions visible to the unit.
func WithBuiltins(builtins map[string]Value) Option {
	return func(vm *VirtualMachine) {
		vm.builtins = builtins
	}
}

// WithStdout sets the writer used by print and PRINT_EXPR.
func WithStdout(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.stdout = w
	}
}

// WithTable sets the opcode table used to decode the unit. It must be the
// table the unit was assembled with.
func WithTable(table *op.Table) Option {
	return func(vm *VirtualMachine) {
		vm.table = table
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution, in instructions. A value of 0 disables the check.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for VM execution events. Returning false
// from OnStep halts execution.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
