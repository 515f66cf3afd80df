// Package op defines the opcode table used by the snakebyte assembler,
// disassembler and virtual machine.
//
// Opcode numbering follows the CPython 3.5 layout: one opcode byte,
// optionally followed by a two-byte little-endian operand. Unlike CPython,
// every jump operand is an absolute byte offset into the code stream.
package op

// Code is a single-byte opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = 0

	// Stack
	PopTop    Code = 1
	RotTwo    Code = 2
	RotThree  Code = 3
	DupTop    Code = 4
	DupTopTwo Code = 5
	Nop       Code = 9

	// Unary
	UnaryPositive Code = 10
	UnaryNegative Code = 11
	UnaryNot      Code = 12
	UnaryInvert   Code = 15

	// Binary
	BinaryPower       Code = 19
	BinaryMultiply    Code = 20
	BinaryModulo      Code = 22
	BinaryAdd         Code = 23
	BinarySubtract    Code = 24
	BinarySubscr      Code = 25
	BinaryFloorDivide Code = 26
	BinaryTrueDivide  Code = 27
	InplaceAdd        Code = 55
	InplaceSubtract   Code = 56
	InplaceMultiply   Code = 57
	StoreSubscr       Code = 60
	BinaryLShift      Code = 62
	BinaryRShift      Code = 63
	BinaryAnd         Code = 64
	BinaryXor         Code = 65
	BinaryOr          Code = 66

	// Iteration and blocks
	GetIter     Code = 68
	PrintExpr   Code = 70
	BreakLoop   Code = 80
	ReturnValue Code = 83
	PopBlock    Code = 87

	// Opcodes from here on carry a two-byte operand
	StoreName      Code = 90
	DeleteName     Code = 91
	UnpackSequence Code = 92
	ForIter        Code = 93
	StoreAttr      Code = 95
	StoreGlobal    Code = 97
	LoadConst      Code = 100
	LoadName       Code = 101
	BuildTuple     Code = 102
	BuildList      Code = 103
	BuildMap       Code = 105
	LoadAttr       Code = 106
	CompareOp      Code = 107
	ImportName     Code = 108
	ImportFrom     Code = 109

	// Jump
	JumpForward      Code = 110
	JumpIfFalseOrPop Code = 111
	JumpIfTrueOrPop  Code = 112
	JumpAbsolute     Code = 113
	PopJumpIfFalse   Code = 114
	PopJumpIfTrue    Code = 115

	LoadGlobal   Code = 116
	ContinueLoop Code = 119
	SetupLoop    Code = 120

	// Locals
	LoadFast   Code = 124
	StoreFast  Code = 125
	DeleteFast Code = 126

	// Calls
	RaiseVarargs Code = 130
	CallFunction Code = 131
	BuildSlice   Code = 133
)

// HaveArgument is the first opcode that carries a two-byte operand.
const HaveArgument Code = 90

// Kind describes how the operand of an operation is encoded.
type Kind uint8

const (
	// None operations are a single opcode byte.
	None Kind = iota
	// Fixed16 operations carry a raw two-byte operand.
	Fixed16
	// JumpAbs operations carry a two-byte label reference.
	JumpAbs
	// NameRef operands index the global names table.
	NameRef
	// ConstRef operands index the constants table.
	ConstRef
	// VarRef operands index the local variable names table.
	VarRef
	// CompareOpRef operands index the comparator list.
	CompareOpRef
)

// String returns a short description of the operand kind.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Fixed16:
		return "fixed16"
	case JumpAbs:
		return "jump"
	case NameRef:
		return "name"
	case ConstRef:
		return "const"
	case VarRef:
		return "var"
	case CompareOpRef:
		return "compare"
	default:
		return "unknown"
	}
}

// IsSymbolic returns true if operands of this kind are resolved through a
// symbol table or comparator list rather than encoded directly.
func (k Kind) IsSymbolic() bool {
	switch k {
	case NameRef, ConstRef, VarRef, CompareOpRef:
		return true
	}
	return false
}

// HasOperand returns true if instructions of this kind are three bytes long.
func (k Kind) HasOperand() bool {
	return k != None
}

// CompareOpType is an index into CompareOps.
type CompareOpType uint16

const (
	LessThan           CompareOpType = 0
	LessThanOrEqual    CompareOpType = 1
	Equal              CompareOpType = 2
	NotEqual           CompareOpType = 3
	GreaterThan        CompareOpType = 4
	GreaterThanOrEqual CompareOpType = 5
	In                 CompareOpType = 6
	NotIn              CompareOpType = 7
	Is                 CompareOpType = 8
	IsNot              CompareOpType = 9
	ExceptionMatch     CompareOpType = 10
	Bad                CompareOpType = 11
)

// CompareOps is the ordered list of comparator tokens accepted by
// COMPARE_OP. A token's position is its operand value.
var CompareOps = []string{
	"<", "<=", "==", "!=", ">", ">=",
	"in", "not in", "is", "is not", "exception match", "BAD",
}

// String returns the comparator token, for example "<=".
func (cop CompareOpType) String() string {
	if int(cop) >= len(CompareOps) {
		return ""
	}
	return CompareOps[cop]
}

// LookupCompareOp returns the operand value for a comparator token.
func LookupCompareOp(token string) (CompareOpType, bool) {
	for i, t := range CompareOps {
		if t == token {
			return CompareOpType(i), true
		}
	}
	return 0, false
}
