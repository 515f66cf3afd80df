package bytecode

import (
	"github.com/deepnoodle-ai/snakebyte/literal"
	"github.com/deepnoodle-ai/snakebyte/op"
)

// Default metadata values for units.
const (
	DefaultStackSize  = 3
	DefaultUnitName   = "hi"
	DefaultSourceName = "hi"
)

// Unit is an immutable compiled unit. It is safe for concurrent use.
type Unit struct {
	id         string
	code       []byte
	constants  []literal.Value
	names      []string
	varNames   []string
	stackSize  int
	flags      int
	unitName   string
	sourceName string
	filename   string
	opVersion  string
}

// UnitParams contains parameters for creating a new Unit.
type UnitParams struct {
	// ID overrides the computed content ID. Leave empty to compute it.
	ID         string
	Code       []byte
	Constants  []literal.Value
	Names      []string
	VarNames   []string
	StackSize  int
	Flags      int
	UnitName   string
	SourceName string
	// Filename is the path of the assembly source, if known.
	Filename string
	// OpVersion names the opcode table revision the code targets.
	OpVersion string
}

// NewUnit creates a new immutable Unit from the given parameters. Input
// slices are copied.
func NewUnit(params UnitParams) *Unit {
	opVersion := params.OpVersion
	if opVersion == "" {
		opVersion = op.Version1
	}
	u := &Unit{
		code:       copyBytes(params.Code),
		constants:  copyConstants(params.Constants),
		names:      copyStrings(params.Names),
		varNames:   copyStrings(params.VarNames),
		stackSize:  params.StackSize,
		flags:      params.Flags,
		unitName:   params.UnitName,
		sourceName: params.SourceName,
		filename:   params.Filename,
		opVersion:  opVersion,
	}
	u.id = params.ID
	if u.id == "" {
		u.id = ComputeID(u)
	}
	return u
}

// ID returns the unit's content ID.
func (u *Unit) ID() string {
	return u.id
}

// Code returns a copy of the instruction byte stream.
func (u *Unit) Code() []byte {
	return copyBytes(u.code)
}

// CodeLen returns the length of the instruction byte stream.
func (u *Unit) CodeLen() int {
	return len(u.code)
}

// CodeAt returns the byte at the given offset.
func (u *Unit) CodeAt(offset int) byte {
	return u.code[offset]
}

// ConstantCount returns the number of constants.
func (u *Unit) ConstantCount() int {
	return len(u.constants)
}

// ConstantAt returns the constant at the given index. Sequence and bytes
// constants are returned as copies.
func (u *Unit) ConstantAt(index int) literal.Value {
	return copyConstant(u.constants[index])
}

// NameCount returns the number of global names.
func (u *Unit) NameCount() int {
	return len(u.names)
}

// NameAt returns the global name at the given index.
func (u *Unit) NameAt(index int) string {
	return u.names[index]
}

// Names returns a copy of the global names table.
func (u *Unit) Names() []string {
	return copyStrings(u.names)
}

// VarNameCount returns the number of variable names.
func (u *Unit) VarNameCount() int {
	return len(u.varNames)
}

// VarNameAt returns the variable name at the given index.
func (u *Unit) VarNameAt(index int) string {
	return u.varNames[index]
}

// VarNames returns a copy of the variable names table.
func (u *Unit) VarNames() []string {
	return copyStrings(u.varNames)
}

// ArgCount is always zero; units take no positional arguments.
func (u *Unit) ArgCount() int {
	return 0
}

// KwOnlyArgCount is always zero; units take no keyword arguments.
func (u *Unit) KwOnlyArgCount() int {
	return 0
}

// StackSize returns the stack size hint. It is not validated against the
// code.
func (u *Unit) StackSize() int {
	return u.stackSize
}

// Flags returns the unit flags.
func (u *Unit) Flags() int {
	return u.flags
}

// UnitName returns the unit name.
func (u *Unit) UnitName() string {
	return u.unitName
}

// SourceName returns the source name recorded in the unit.
func (u *Unit) SourceName() string {
	return u.sourceName
}

// Filename returns the path of the assembly source, if known.
func (u *Unit) Filename() string {
	return u.filename
}

// OpVersion returns the opcode table revision the unit targets.
func (u *Unit) OpVersion() string {
	return u.opVersion
}

// FirstLineNumber is always zero; units carry no line information.
func (u *Unit) FirstLineNumber() int {
	return 0
}

// LineTable returns the line number table, which is always empty.
func (u *Unit) LineTable() []byte {
	return []byte{}
}

// IsEmpty returns true if the unit has no code and no tables.
func (u *Unit) IsEmpty() bool {
	return len(u.code) == 0 && len(u.constants) == 0 &&
		len(u.names) == 0 && len(u.varNames) == 0
}
