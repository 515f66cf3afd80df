package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Literal errors
//   - E2xxx: Assembly errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Literal errors (E1xxx)
	E1001 ErrorCode = "E1001" // Invalid literal syntax
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1003 ErrorCode = "E1003" // Invalid number literal
	E1004 ErrorCode = "E1004" // Invalid escape sequence

	// Assembly errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unknown operation
	E2002 ErrorCode = "E2002" // Undefined symbol
	E2003 ErrorCode = "E2003" // Undefined label
	E2004 ErrorCode = "E2004" // Unknown comparator
	E2005 ErrorCode = "E2005" // Duplicate label
	E2006 ErrorCode = "E2006" // Invalid operand
	E2007 ErrorCode = "E2007" // Operand overflow
	E2008 ErrorCode = "E2008" // Constant redefined
	E2009 ErrorCode = "E2009" // Missing argument
	E2010 ErrorCode = "E2010" // Unexpected argument

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Execution failed
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "invalid literal",
	E1002: "unterminated string literal",
	E1003: "invalid number literal",
	E1004: "invalid escape sequence",

	E2001: "unknown operation",
	E2002: "undefined symbol",
	E2003: "undefined label",
	E2004: "unknown comparator",
	E2005: "duplicate label",
	E2006: "invalid operand",
	E2007: "operand overflow",
	E2008: "constant redefined",
	E2009: "missing argument",
	E2010: "unexpected argument",

	E3001: "execution failed",
}

// codeSentinels maps error codes to the sentinel errors they wrap.
var codeSentinels = map[ErrorCode]error{
	E1001: ErrInvalidLiteral,
	E1002: ErrInvalidLiteral,
	E1003: ErrInvalidLiteral,
	E1004: ErrInvalidLiteral,
	E2001: ErrUnknownOperation,
	E2002: ErrUndefinedSymbol,
	E2003: ErrUndefinedLabel,
	E2004: ErrUnknownComparator,
	E2005: ErrDuplicateLabel,
	E2006: ErrInvalidOperand,
	E2007: ErrOperandOverflow,
	E2008: ErrConstantRedefined,
	E2009: ErrMissingArgument,
	E2010: ErrUnexpectedArgument,
	E3001: ErrExecution,
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// Sentinel returns the sentinel error matched by errors.Is for this code.
func (c ErrorCode) Sentinel() error {
	return codeSentinels[c]
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "literal"
	case '2':
		return "assembly"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
