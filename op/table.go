package op

import (
	"fmt"
	"sort"
)

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	Kind Kind
}

// IsValid returns true if the info describes a registered opcode.
func (i Info) IsValid() bool {
	return i.Name != ""
}

// Size returns the encoded size of the instruction in bytes.
func (i Info) Size() int {
	if i.Kind.HasOperand() {
		return 3
	}
	return 1
}

// Def declares one operation for NewTable. A zero Kind asks the table to
// classify the operation from its opcode value.
type Def struct {
	Code Code
	Name string
	Kind Kind
}

// Table maps operation names to opcodes and operand kinds. A Table is
// versioned configuration data and must match the virtual machine that runs
// the produced units. Tables are read-only after construction.
type Table struct {
	version      string
	haveArgument Code
	jumps        map[Code]bool
	infos        [256]Info
	byName       map[string]Info
}

// NewTable builds a table. Operations without an explicit symbolic Kind are
// classified as JumpAbs if their opcode is in jumpTargets, as Fixed16 if the
// opcode is at or above haveArgument, and as None otherwise.
// The legacy assembler tested opcode > haveArgument, which left
// haveArgument itself (STORE_NAME) without an operand.
func NewTable(version string, haveArgument Code, jumpTargets []Code, defs []Def) (*Table, error) {
	t := &Table{
		version:      version,
		haveArgument: haveArgument,
		jumps:        make(map[Code]bool, len(jumpTargets)),
		byName:       make(map[string]Info, len(defs)),
	}
	for _, c := range jumpTargets {
		t.jumps[c] = true
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("opcode %d has no name", d.Code)
		}
		if t.infos[d.Code].IsValid() {
			return nil, fmt.Errorf("opcode %d registered twice (%s, %s)",
				d.Code, t.infos[d.Code].Name, d.Name)
		}
		if _, exists := t.byName[d.Name]; exists {
			return nil, fmt.Errorf("operation %s registered twice", d.Name)
		}
		kind := d.Kind
		if !kind.IsSymbolic() {
			kind = t.classify(d.Code)
		}
		info := Info{Code: d.Code, Name: d.Name, Kind: kind}
		t.infos[d.Code] = info
		t.byName[d.Name] = info
	}
	return t, nil
}

func (t *Table) classify(c Code) Kind {
	if t.jumps[c] {
		return JumpAbs
	}
	if c >= t.haveArgument {
		return Fixed16
	}
	return None
}

// Version identifies the virtual machine revision this table targets.
func (t *Table) Version() string {
	return t.version
}

// HaveArgument returns the first opcode that carries an operand.
func (t *Table) HaveArgument() Code {
	return t.haveArgument
}

// IsJump returns true if the opcode takes a jump target.
func (t *Table) IsJump(c Code) bool {
	return t.jumps[c]
}

// Lookup returns the operation registered under the given name.
func (t *Table) Lookup(name string) (Info, bool) {
	info, ok := t.byName[name]
	return info, ok
}

// Get returns information about the given opcode. The returned Info is
// invalid if the opcode is not registered.
func (t *Table) Get(c Code) Info {
	return t.infos[c]
}

// Names returns the sorted names of all registered operations.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Version1 is the name of the default table revision.
const Version1 = "snakebyte/1"

var defaultTable *Table

func init() {
	jumps := []Code{
		ForIter,
		JumpForward,
		JumpIfFalseOrPop,
		JumpIfTrueOrPop,
		JumpAbsolute,
		PopJumpIfFalse,
		PopJumpIfTrue,
		ContinueLoop,
		SetupLoop,
	}
	defs := []Def{
		{PopTop, "POP_TOP", None},
		{RotTwo, "ROT_TWO", None},
		{RotThree, "ROT_THREE", None},
		{DupTop, "DUP_TOP", None},
		{DupTopTwo, "DUP_TOP_TWO", None},
		{Nop, "NOP", None},
		{UnaryPositive, "UNARY_POSITIVE", None},
		{UnaryNegative, "UNARY_NEGATIVE", None},
		{UnaryNot, "UNARY_NOT", None},
		{UnaryInvert, "UNARY_INVERT", None},
		{BinaryPower, "BINARY_POWER", None},
		{BinaryMultiply, "BINARY_MULTIPLY", None},
		{BinaryModulo, "BINARY_MODULO", None},
		{BinaryAdd, "BINARY_ADD", None},
		{BinarySubtract, "BINARY_SUBTRACT", None},
		{BinarySubscr, "BINARY_SUBSCR", None},
		{BinaryFloorDivide, "BINARY_FLOOR_DIVIDE", None},
		{BinaryTrueDivide, "BINARY_TRUE_DIVIDE", None},
		{InplaceAdd, "INPLACE_ADD", None},
		{InplaceSubtract, "INPLACE_SUBTRACT", None},
		{InplaceMultiply, "INPLACE_MULTIPLY", None},
		{StoreSubscr, "STORE_SUBSCR", None},
		{BinaryLShift, "BINARY_LSHIFT", None},
		{BinaryRShift, "BINARY_RSHIFT", None},
		{BinaryAnd, "BINARY_AND", None},
		{BinaryXor, "BINARY_XOR", None},
		{BinaryOr, "BINARY_OR", None},
		{GetIter, "GET_ITER", None},
		{PrintExpr, "PRINT_EXPR", None},
		{BreakLoop, "BREAK_LOOP", None},
		{ReturnValue, "RETURN_VALUE", None},
		{PopBlock, "POP_BLOCK", None},
		{StoreName, "STORE_NAME", None},
		{DeleteName, "DELETE_NAME", None},
		{UnpackSequence, "UNPACK_SEQUENCE", None},
		{ForIter, "FOR_ITER", None},
		{StoreAttr, "STORE_ATTR", None},
		{StoreGlobal, "STORE_GLOBAL", None},
		{LoadConst, "LOAD_CONST", ConstRef},
		{LoadName, "LOAD_NAME", None},
		{BuildTuple, "BUILD_TUPLE", None},
		{BuildList, "BUILD_LIST", None},
		{BuildMap, "BUILD_MAP", None},
		{LoadAttr, "LOAD_ATTR", NameRef},
		{CompareOp, "COMPARE_OP", CompareOpRef},
		{ImportName, "IMPORT_NAME", NameRef},
		{ImportFrom, "IMPORT_FROM", NameRef},
		{JumpForward, "JUMP_FORWARD", None},
		{JumpIfFalseOrPop, "JUMP_IF_FALSE_OR_POP", None},
		{JumpIfTrueOrPop, "JUMP_IF_TRUE_OR_POP", None},
		{JumpAbsolute, "JUMP_ABSOLUTE", None},
		{PopJumpIfFalse, "POP_JUMP_IF_FALSE", None},
		{PopJumpIfTrue, "POP_JUMP_IF_TRUE", None},
		{LoadGlobal, "LOAD_GLOBAL", NameRef},
		{ContinueLoop, "CONTINUE_LOOP", None},
		{SetupLoop, "SETUP_LOOP", None},
		{LoadFast, "LOAD_FAST", VarRef},
		{StoreFast, "STORE_FAST", VarRef},
		{DeleteFast, "DELETE_FAST", None},
		{RaiseVarargs, "RAISE_VARARGS", None},
		{CallFunction, "CALL_FUNCTION", None},
		{BuildSlice, "BUILD_SLICE", None},
	}
	t, err := NewTable(Version1, HaveArgument, jumps, defs)
	if err != nil {
		panic(err)
	}
	defaultTable = t
}

// Default returns the table for the current virtual machine revision.
func Default() *Table {
	return defaultTable
}

// GetInfo returns information about the given opcode in the default table.
func GetInfo(c Code) Info {
	return defaultTable.Get(c)
}
