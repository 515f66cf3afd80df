package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/snakebyte/op"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Offset     int
	Info       op.Info
	Operand    uint16
	HasOperand bool
}

// InstructionIter iterates over the instructions of a Unit.
type InstructionIter struct {
	unit  *Unit
	table *op.Table
	pos   int
	err   error
}

// NewInstructionIter creates a new instruction iterator for the given unit
// using the default opcode table.
func NewInstructionIter(unit *Unit) *InstructionIter {
	return NewInstructionIterWithTable(unit, op.Default())
}

// NewInstructionIterWithTable creates an iterator that decodes with table.
func NewInstructionIterWithTable(unit *Unit, table *op.Table) *InstructionIter {
	return &InstructionIter{unit: unit, table: table}
}

// Next returns the next instruction. It returns false when the code is
// exhausted or cannot be decoded; check Err to tell the two apart.
//
// Opcodes missing from the table decode as single bytes with an invalid
// Info.
func (i *InstructionIter) Next() (Instruction, bool) {
	if i.err != nil || i.pos >= i.unit.CodeLen() {
		return Instruction{}, false
	}
	code := op.Code(i.unit.CodeAt(i.pos))
	info := i.table.Get(code)
	if !info.IsValid() {
		info = op.Info{Code: code}
	}
	instr := Instruction{Offset: i.pos, Info: info}
	if !info.Kind.HasOperand() {
		i.pos++
		return instr, true
	}
	if i.pos+2 >= i.unit.CodeLen() {
		i.err = fmt.Errorf("truncated operand for %s at offset %d", info.Name, i.pos)
		return Instruction{}, false
	}
	instr.HasOperand = true
	instr.Operand = uint16(i.unit.CodeAt(i.pos+1)) | uint16(i.unit.CodeAt(i.pos+2))<<8
	i.pos += 3
	return instr, true
}

// Err returns the decoding error that stopped iteration, if any.
func (i *InstructionIter) Err() error {
	return i.err
}

// All returns all instructions as a newly allocated slice.
func (i *InstructionIter) All() ([]Instruction, error) {
	var results []Instruction
	for {
		instr, ok := i.Next()
		if !ok {
			break
		}
		results = append(results, instr)
	}
	return results, i.err
}
