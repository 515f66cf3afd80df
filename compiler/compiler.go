// Package compiler assembles snakebyte source lines into a compiled unit.
//
// # Two-Pass Encoding
//
// Instructions are encoded in a single forward pass over the source. Jump
// instructions may name labels that are defined later, so each jump is
// emitted with a two-byte placeholder operand and recorded as a pending
// jump. Build runs the second pass: every pending jump is patched with the
// absolute byte offset of its label, low byte first.
//
// # Operand Resolution
//
// Each operation resolves its operand in one of these ways:
//
//   - Directives (DEF_LABEL, DEF_NAME, DEF_VAR, DEF_CONST, RAW) emit no
//     opcode of their own; they bind labels, intern symbols or append raw
//     bytes.
//   - Symbolic operations index a table. Names (LOAD_GLOBAL, LOAD_ATTR,
//     IMPORT_NAME, IMPORT_FROM), constants (LOAD_CONST) and variables
//     (LOAD_FAST, STORE_FAST) must be declared before use. COMPARE_OP takes
//     a comparator token such as "<=" or "not in".
//   - Jump operations take a label.
//   - Fixed16 operations take an integer literal.
//   - All other operations take no argument.
//
// A symbol that is not declared fails before any bytes are appended, so a
// failed Emit leaves the code stream unchanged.
package compiler

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/op"
	"github.com/deepnoodle-ai/snakebyte/source"
)

// Config holds compiler configuration options.
type Config struct {
	// Table is the opcode table to assemble against. Defaults to
	// op.Default().
	Table *op.Table

	// Filename is the source filename, used for error messages.
	Filename string

	// Unit metadata.
	StackSize  int
	Flags      int
	UnitName   string
	SourceName string

	// StrictOperands turns out-of-range operands into errors. When false,
	// operands wrap modulo 65536 and a warning is logged.
	StrictOperands bool

	// AllowLabelRedefinition lets a later DEF_LABEL move an existing label.
	// When false, defining a label twice is an error.
	AllowLabelRedefinition bool

	// Logger receives debug events per instruction and warnings. Defaults
	// to a disabled logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StackSize:  bytecode.DefaultStackSize,
		UnitName:   bytecode.DefaultUnitName,
		SourceName: bytecode.DefaultSourceName,
	}
}

// Compiler assembles operations into a code stream and symbol tables. A
// Compiler is used for one assembly run and is not safe for concurrent use.
type Compiler struct {
	cfg    Config
	table  *op.Table
	log    zerolog.Logger
	code   []byte
	names  *SymbolTable
	vars   *SymbolTable
	consts *ConstantTable
	labels *LabelTable

	// Jumps awaiting label resolution, in emission order
	pending []PendingJump

	// Source line being emitted, for error context
	line source.Line
}

// New creates and returns a new Compiler. Pass nil for cfg to use
// DefaultConfig.
func New(cfg *Config) *Compiler {
	c := &Compiler{cfg: DefaultConfig()}
	if cfg != nil {
		c.cfg = *cfg
	}
	c.table = c.cfg.Table
	if c.table == nil {
		c.table = op.Default()
	}
	if c.cfg.Logger != nil {
		c.log = *c.cfg.Logger
	} else {
		c.log = zerolog.Nop()
	}
	c.names = NewSymbolTable()
	c.vars = NewSymbolTable()
	c.consts = NewConstantTable()
	c.labels = NewLabelTable(c.cfg.AllowLabelRedefinition)
	return c
}

// Table returns the opcode table in use.
func (c *Compiler) Table() *op.Table {
	return c.table
}

// Offset returns the current length of the code stream, which is the
// offset the next instruction will be written at.
func (c *Compiler) Offset() int {
	return len(c.code)
}

// Code returns a copy of the code stream emitted so far. Jump operands are
// zero until Build resolves them.
func (c *Compiler) Code() []byte {
	out := make([]byte, len(c.code))
	copy(out, c.code)
	return out
}

// Names returns the global names table.
func (c *Compiler) Names() *SymbolTable {
	return c.names
}

// VarNames returns the variable names table.
func (c *Compiler) VarNames() *SymbolTable {
	return c.vars
}

// Constants returns the constants table.
func (c *Compiler) Constants() *ConstantTable {
	return c.consts
}

// Labels returns the label table.
func (c *Compiler) Labels() *LabelTable {
	return c.labels
}

// PendingJumps returns the jumps not yet resolved.
func (c *Compiler) PendingJumps() []PendingJump {
	out := make([]PendingJump, len(c.pending))
	copy(out, c.pending)
	return out
}

// EmitLine emits one source line. Errors carry the line's location.
func (c *Compiler) EmitLine(line source.Line) error {
	c.line = line
	defer func() { c.line = source.Line{} }()
	return c.emit(line.Operation, line.Argument)
}

// Emit emits one operation with an optional argument.
func (c *Compiler) Emit(operation string, arg *string) error {
	c.line = source.Line{}
	return c.emit(operation, arg)
}

func (c *Compiler) emit(operation string, arg *string) error {
	if d, ok := directives[operation]; ok {
		if arg == nil || strings.TrimSpace(*arg) == "" {
			return c.missingArgument(operation)
		}
		return d(c, strings.TrimSpace(*arg))
	}

	info, ok := c.table.Lookup(operation)
	if !ok {
		return c.unknownOperation(operation)
	}

	if info.Kind == op.None {
		if arg != nil {
			return c.errorf(errors.E2010, "%s takes no argument, got %q", info.Name, *arg).
				WithNote("operations below HAVE_ARGUMENT are a single byte")
		}
		c.log.Debug().Str("op", info.Name).Int("offset", len(c.code)).Msg("emit")
		c.code = append(c.code, byte(info.Code))
		return nil
	}

	if arg == nil || strings.TrimSpace(*arg) == "" {
		return c.missingArgument(info.Name)
	}
	value := strings.TrimSpace(*arg)

	switch info.Kind {
	case op.JumpAbs:
		return c.emitJump(info, value)
	case op.Fixed16:
		return c.emitFixed(info, value)
	case op.NameRef:
		return c.emitSymbol(info, value, "name", c.names, "DEF_NAME")
	case op.VarRef:
		return c.emitSymbol(info, value, "variable", c.vars, "DEF_VAR")
	case op.ConstRef:
		return c.emitConst(info, value)
	case op.CompareOpRef:
		return c.emitCompare(info, value)
	}
	return fmt.Errorf("operation %s has unsupported operand kind %s", info.Name, info.Kind)
}

// emitOperand appends an instruction with a two-byte operand.
func (c *Compiler) emitOperand(info op.Info, operand int) error {
	if err := CheckOperand(operand); err != nil {
		if c.cfg.StrictOperands {
			return c.locate(err.(*errors.AssemblyError))
		}
		c.log.Warn().
			Str("op", info.Name).
			Int("operand", operand).
			Int("line", c.line.Number).
			Msg("operand overflows 16 bits and was masked")
	}
	lo, hi := Encode16(operand)
	c.log.Debug().Str("op", info.Name).Int("offset", len(c.code)).Int("operand", operand).Msg("emit")
	c.code = append(c.code, byte(info.Code), lo, hi)
	return nil
}

func (c *Compiler) emitSymbol(info op.Info, name, kind string, table *SymbolTable, directive string) error {
	index, ok := table.Lookup(name)
	if !ok {
		return c.argErrorf(errors.E2002, "undefined %s %q", kind, name).
			WithSuggestions(errors.SuggestSimilar(name, table.Names())).
			WithNote(fmt.Sprintf("declare it first with %s %s", directive, name))
	}
	return c.emitOperand(info, index)
}

func (c *Compiler) emitConst(info op.Info, name string) error {
	index, ok := c.consts.Lookup(name)
	if !ok {
		return c.argErrorf(errors.E2002, "undefined constant %q", name).
			WithSuggestions(errors.SuggestSimilar(name, c.consts.Names())).
			WithNote(fmt.Sprintf("declare it first with DEF_CONST %s <literal>", name))
	}
	return c.emitOperand(info, index)
}

func (c *Compiler) emitCompare(info op.Info, token string) error {
	cmp, ok := op.LookupCompareOp(token)
	if !ok {
		return c.argErrorf(errors.E2004, "unknown comparator %q", token).
			WithSuggestions(errors.SuggestSimilar(token, op.CompareOps)).
			WithNote("valid comparators: " + strings.Join(op.CompareOps, ", "))
	}
	return c.emitOperand(info, int(cmp))
}

func (c *Compiler) emitFixed(info op.Info, text string) error {
	value, err := parseOperand(text)
	if err != nil {
		return c.argErrorf(errors.E2006, "invalid operand %q for %s", text, info.Name).WithCause(err)
	}
	return c.emitOperand(info, value)
}
