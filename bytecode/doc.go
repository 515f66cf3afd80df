// Package bytecode provides the immutable compiled unit produced by the
// snakebyte assembler.
//
// A [Unit] holds the instruction byte stream together with the constants,
// global names and variable names tables it indexes into, plus a small set
// of metadata (stack size hint, flags, unit and source names). Units are
// created once by the assembler and may be shared safely across goroutines
// and virtual machine instances.
//
// # Immutability Guarantees
//
//   - All fields are unexported and no mutation methods exist
//   - [NewUnit] copies every input slice
//   - Accessors return values or fresh copies, never internal slices
//
// Index-based access is used for all tables:
//
//	unit.CodeAt(0)
//	unit.ConstantAt(i)
//	unit.NameAt(j)
//	unit.VarNameAt(k)
//
// # Instruction Encoding
//
// Each instruction is one opcode byte. Opcodes whose [op.Kind] carries an
// operand are followed by two bytes holding a little-endian uint16. Jump
// operands are absolute byte offsets into the code stream. Use
// [NewInstructionIter] to walk a unit instruction by instruction.
//
// # Identity
//
// Every unit has a name-based UUID (version 5) computed from its code and
// tables, so assembling the same source twice yields the same ID.
//
// # Serialization
//
// [Marshal] and [Unmarshal] convert units to and from JSON, with constants
// stored as typed definitions:
//
//	data, err := bytecode.Marshal(unit)
//	if err != nil {
//	    return err
//	}
//	restored, err := bytecode.Unmarshal(data)
package bytecode
