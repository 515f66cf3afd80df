package snakebyte

import (
	"io"
	"maps"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/snakebyte/compiler"
	"github.com/deepnoodle-ai/snakebyte/op"
	"github.com/deepnoodle-ai/snakebyte/vm"
)

// Option configures assembly or execution.
type Option func(*options)

type options struct {
	cfg         compiler.Config
	trace       io.Writer
	globals     map[string]any
	stdout      io.Writer
	diagnostics io.Writer
	observer    vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{
		cfg:     compiler.DefaultConfig(),
		globals: map[string]any{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if o.cfg.Table != nil {
		opts = append(opts, vm.WithTable(o.cfg.Table))
	}
	if len(o.globals) > 0 {
		opts = append(opts, vm.WithGlobals(o.globals))
	}
	if o.stdout != nil {
		opts = append(opts, vm.WithStdout(o.stdout))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	return opts
}

// WithFilename sets the filename reported in errors and stored in the unit.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.cfg.Filename = filename
	}
}

// WithTable sets the opcode table. The same table is used to run the unit.
func WithTable(table *op.Table) Option {
	return func(o *options) {
		o.cfg.Table = table
	}
}

// WithStackSize sets the stack size recorded in the unit.
func WithStackSize(size int) Option {
	return func(o *options) {
		o.cfg.StackSize = size
	}
}

// WithFlags sets the flags recorded in the unit.
func WithFlags(flags int) Option {
	return func(o *options) {
		o.cfg.Flags = flags
	}
}

// WithUnitName sets the unit name.
func WithUnitName(name string) Option {
	return func(o *options) {
		o.cfg.UnitName = name
	}
}

// WithSourceName sets the source name recorded in the unit.
func WithSourceName(name string) Option {
	return func(o *options) {
		o.cfg.SourceName = name
	}
}

// WithStrictOperands makes operands above 65535 an error instead of being
// masked to 16 bits.
func WithStrictOperands(strict bool) Option {
	return func(o *options) {
		o.cfg.StrictOperands = strict
	}
}

// WithLabelRedefinition allows a later DEF_LABEL to move an existing label.
func WithLabelRedefinition(allow bool) Option {
	return func(o *options) {
		o.cfg.AllowLabelRedefinition = allow
	}
}

// WithLogger sets the logger used during assembly.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.cfg.Logger = &logger
	}
}

// WithTrace writes each consumed instruction to w, prefixed with the offset
// it is emitted at.
func WithTrace(w io.Writer) Option {
	return func(o *options) {
		o.trace = w
	}
}

// WithGlobals provides global variables to the virtual machine. This option
// is additive; if the same key is supplied multiple times, the last value wins.
func WithGlobals(globals map[string]any) Option {
	return func(o *options) {
		maps.Copy(o.globals, globals)
	}
}

// WithStdout sets where print and PRINT_EXPR write. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithDiagnostics sets where Run writes a disassembly of a unit that failed
// to execute.
func WithDiagnostics(w io.Writer) Option {
	return func(o *options) {
		o.diagnostics = w
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}
