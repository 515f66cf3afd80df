// Package dis supports analysis of snakebyte units by disassembling them.
// It decodes instructions with the tables in the `op` package and the
// InstructionIter type from the `bytecode` package.
package dis

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/internal/table"
	"github.com/deepnoodle-ai/snakebyte/literal"
	"github.com/deepnoodle-ai/snakebyte/op"
)

// Instruction represents a single decoded instruction.
type Instruction struct {
	Offset     int           `json:"offset"`
	Name       string        `json:"name"`
	Opcode     op.Code       `json:"opcode"`
	Kind       op.Kind       `json:"-"`
	HasOperand bool          `json:"has_operand"`
	Operand    uint16        `json:"operand,omitempty"`
	Annotation string        `json:"annotation,omitempty"`
	Constant   literal.Value `json:"-"`
}

// Disassemble returns a parsed representation of the given unit using the
// default opcode table.
func Disassemble(unit *bytecode.Unit) ([]Instruction, error) {
	return DisassembleWithTable(unit, op.Default())
}

// DisassembleWithTable decodes the unit with the given opcode table. Bytes
// that are not registered opcodes are listed individually. Operands that
// index past the end of a table are annotated rather than rejected.
func DisassembleWithTable(unit *bytecode.Unit, table *op.Table) ([]Instruction, error) {
	var instructions []Instruction
	iter := bytecode.NewInstructionIterWithTable(unit, table)
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		instr := Instruction{
			Offset:     val.Offset,
			Name:       val.Info.Name,
			Opcode:     val.Info.Code,
			Kind:       val.Info.Kind,
			HasOperand: val.HasOperand,
			Operand:    val.Operand,
		}
		if !val.Info.IsValid() {
			instr.Name = fmt.Sprintf("<%d>", val.Info.Code)
		}
		annotate(unit, &instr)
		instructions = append(instructions, instr)
	}
	if err := iter.Err(); err != nil {
		return instructions, err
	}
	return instructions, nil
}

func annotate(unit *bytecode.Unit, instr *Instruction) {
	if !instr.HasOperand {
		return
	}
	index := int(instr.Operand)
	switch {
	case instr.Kind == op.NameRef || usesNames(instr.Opcode):
		instr.Annotation = lookup(index, unit.NameCount(), unit.NameAt)
	case instr.Kind == op.VarRef || instr.Opcode == op.DeleteFast:
		instr.Annotation = lookup(index, unit.VarNameCount(), unit.VarNameAt)
	case instr.Kind == op.ConstRef:
		if index >= unit.ConstantCount() {
			instr.Annotation = outOfRange(index)
			return
		}
		instr.Constant = unit.ConstantAt(index)
		instr.Annotation = literal.Repr(instr.Constant)
	case instr.Kind == op.CompareOpRef:
		instr.Annotation = op.CompareOpType(index).String()
		if instr.Annotation == "" {
			instr.Annotation = outOfRange(index)
		}
	case instr.Kind == op.JumpAbs:
		instr.Annotation = fmt.Sprintf("to %d", index)
	}
}

// usesNames reports whether a generic operation indexes the names table.
func usesNames(code op.Code) bool {
	switch code {
	case op.StoreName, op.DeleteName, op.LoadName, op.StoreAttr, op.StoreGlobal:
		return true
	}
	return false
}

func lookup(index, count int, at func(int) string) string {
	if index >= count {
		return outOfRange(index)
	}
	return at(index)
}

func outOfRange(index int) string {
	return fmt.Sprintf("<index %d out of range>", index)
}

var (
	colorName     = color.New(color.Bold)
	colorInt      = color.New(color.FgYellow)
	colorString   = color.New(color.FgGreen)
	colorOther    = color.New(color.FgMagenta)
	colorAnnotate = color.New(color.FgHiCyan)
	colorUnknown  = color.New(color.FgHiBlack)
)

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	t := table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERAND", "INFO"}).
		WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter}).
		WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignRight, table.AlignLeft})
	for _, instr := range instructions {
		name := colorName
		if instr.Name != "" && instr.Name[0] == '<' {
			name = colorUnknown
		}
		var operand string
		if instr.HasOperand {
			operand = fmt.Sprintf("%d", instr.Operand)
		}
		t.Append([]string{
			fmt.Sprintf("%d", instr.Offset),
			paint(name, instr.Name),
			operand,
			annotationCell(instr),
		})
	}
	t.Render()
}

func paint(c *color.Color, text string) string {
	if text == "" {
		return text
	}
	return c.Sprint(text)
}

func annotationCell(instr Instruction) string {
	if instr.Annotation == "" {
		return ""
	}
	text := instr.Annotation
	if runes := []rune(text); len(runes) > 80 {
		text = string(runes[:77]) + "..."
	}
	c := colorAnnotate
	if instr.Kind == op.ConstRef {
		switch instr.Constant.(type) {
		case int64, float64, bool:
			c = colorInt
		case string, []byte:
			c = colorString
		case literal.Tuple, literal.List:
			c = colorOther
		}
	}
	return paint(c, text)
}

// Dump disassembles the unit and prints it to w.
func Dump(unit *bytecode.Unit, w io.Writer) error {
	instructions, err := Disassemble(unit)
	Print(instructions, w)
	return err
}
