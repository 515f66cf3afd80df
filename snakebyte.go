// Package snakebyte assembles line-oriented bytecode assembly into units for
// a stack virtual machine, and runs them on a reference interpreter.
//
// A minimal program:
//
//	unit, err := snakebyte.Assemble(ctx, "DEF_CONST answer 42\nLOAD_CONST answer\nRETURN_VALUE")
//	if err != nil {
//		return err
//	}
//	result, err := snakebyte.Run(ctx, unit)
package snakebyte

import (
	"context"
	"fmt"
	"os"

	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/compiler"
	"github.com/deepnoodle-ai/snakebyte/dis"
	"github.com/deepnoodle-ai/snakebyte/op"
	"github.com/deepnoodle-ai/snakebyte/source"
	"github.com/deepnoodle-ai/snakebyte/vm"
)

// Assemble assembles source text into a unit.
func Assemble(ctx context.Context, src string, opts ...Option) (*bytecode.Unit, error) {
	return AssembleLines(ctx, source.Parse(src), opts...)
}

// AssembleFile reads and assembles the file at path. Unless WithFilename is
// given, path is used as the unit's filename.
func AssembleFile(ctx context.Context, path string, opts ...Option) (*bytecode.Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines, err := source.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return AssembleLines(ctx, lines, append([]Option{WithFilename(path)}, opts...)...)
}

// AssembleLines assembles lines that were already read. The context is
// checked between lines.
func AssembleLines(ctx context.Context, lines []source.Line, opts ...Option) (*bytecode.Unit, error) {
	o := collectOptions(opts...)
	c := compiler.New(&o.cfg)
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if o.trace != nil {
			fmt.Fprintf(o.trace, "%6d  %s\n", c.Offset(), line.String())
		}
		if err := c.EmitLine(line); err != nil {
			return nil, err
		}
	}
	return c.Build()
}

// Run executes the unit on the reference virtual machine and returns the
// value it returned. If execution fails and a diagnostics writer was given,
// a disassembly of the unit is written to it before the error is returned.
func Run(ctx context.Context, unit *bytecode.Unit, opts ...Option) (any, error) {
	o := collectOptions(opts...)
	result, err := vm.Run(ctx, unit, o.vmOpts()...)
	if err != nil {
		if o.diagnostics != nil {
			table := o.cfg.Table
			if table == nil {
				table = op.Default()
			}
			instructions, _ := dis.DisassembleWithTable(unit, table)
			dis.Print(instructions, o.diagnostics)
		}
		return nil, err
	}
	return result, nil
}

// Eval assembles and runs source text. It is equivalent to Assemble
// followed by Run.
func Eval(ctx context.Context, src string, opts ...Option) (any, error) {
	unit, err := Assemble(ctx, src, opts...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, unit, opts...)
}
