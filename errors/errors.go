// Package errors defines the error types returned by the snakebyte assembler
// and virtual machine.
//
// # Error Boundary
//
// Assembly errors (*AssemblyError) carry the source line that failed, an
// error code and, where possible, "did you mean" suggestions. They are
// returned before any unit is produced; there is no partial output.
//
// Runtime errors (*RuntimeError) are returned by the virtual machine and
// identify the instruction offset that failed.
//
// Every error wraps one of the sentinel errors below, so callers can branch
// with errors.Is without inspecting codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidLiteral     = stderrors.New("invalid literal")
	ErrUnknownOperation   = stderrors.New("unknown operation")
	ErrUndefinedSymbol    = stderrors.New("undefined symbol")
	ErrUndefinedLabel     = stderrors.New("undefined label")
	ErrUnknownComparator  = stderrors.New("unknown comparator")
	ErrDuplicateLabel     = stderrors.New("duplicate label")
	ErrInvalidOperand     = stderrors.New("invalid operand")
	ErrOperandOverflow    = stderrors.New("operand overflow")
	ErrConstantRedefined  = stderrors.New("constant redefined")
	ErrMissingArgument    = stderrors.New("missing argument")
	ErrUnexpectedArgument = stderrors.New("unexpected argument")
	ErrExecution          = stderrors.New("execution failed")
)

// FormattableError is an interface for errors that can be formatted with
// the terminal formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// LiteralError describes a failure to parse literal text. Offset is the
// 0-based byte offset of the problem within the literal text.
type LiteralError struct {
	Code    ErrorCode
	Message string
	Text    string
	Offset  int
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q", e.Message, e.Offset, e.Text)
}

func (e *LiteralError) Unwrap() error {
	return ErrInvalidLiteral
}

// RuntimeError is returned by the virtual machine when an instruction fails.
type RuntimeError struct {
	Message string
	Offset  int
	Opcode  string
	Err     error
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString("runtime error: ")
	b.WriteString(e.Message)
	if e.Opcode != "" {
		fmt.Fprintf(&b, " (%s at offset %d)", e.Opcode, e.Offset)
	}
	return b.String()
}

func (e *RuntimeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrExecution, e.Err}
	}
	return []error{ErrExecution}
}

// RuntimeErrorf creates a RuntimeError with a formatted message.
func RuntimeErrorf(format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// ToFormatted converts to the FormattedError type for display.
func (e *RuntimeError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:    E3001,
		Kind:    "runtime error",
		Message: e.Message,
	}
	if e.Opcode != "" {
		fe.Note = fmt.Sprintf("while executing %s at offset %d", e.Opcode, e.Offset)
	}
	return fe
}
