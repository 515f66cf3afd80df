package compiler

import (
	"sort"

	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/literal"
)

// locate fills in the location of the line being emitted.
func (c *Compiler) locate(err *errors.AssemblyError) *errors.AssemblyError {
	return locateAt(err, c.cfg.Filename, c.line.Number, c.line.Text)
}

func locateAt(err *errors.AssemblyError, filename string, line int, text string) *errors.AssemblyError {
	if err.Filename == "" {
		err.Filename = filename
	}
	if err.Line == 0 {
		err.Line = line
		err.SourceLine = text
	}
	return err
}

// errorf returns an error pointing at the operation of the current line.
func (c *Compiler) errorf(code errors.ErrorCode, format string, args ...any) *errors.AssemblyError {
	err := c.locate(errors.Newf(code, format, args...))
	if c.line.Text != "" {
		err.Column = 1
		err.EndColumn = len(c.line.Operation)
	}
	return err
}

// argErrorf returns an error pointing at the argument of the current line.
func (c *Compiler) argErrorf(code errors.ErrorCode, format string, args ...any) *errors.AssemblyError {
	err := c.locate(errors.Newf(code, format, args...))
	if c.line.Text != "" && c.line.ArgColumn > 0 {
		err.Column = c.line.ArgColumn
		err.EndColumn = len(c.line.Text)
	}
	return err
}

func (c *Compiler) missingArgument(operation string) error {
	return c.errorf(errors.E2009, "%s requires an argument", operation)
}

func (c *Compiler) unknownOperation(operation string) error {
	candidates := append(c.table.Names(), directiveNames()...)
	sort.Strings(candidates)
	return c.errorf(errors.E2001, "unknown operation %q", operation).
		WithSuggestions(errors.SuggestSimilar(operation, candidates))
}

// literalError converts a literal parse failure into an assembly error.
// column is the 1-based column of the literal text within the line.
func (c *Compiler) literalError(err error, column int, format string, args ...any) *errors.AssemblyError {
	code := errors.E2006
	var litErr *errors.LiteralError
	if errors.As(err, &litErr) {
		code = litErr.Code
	}
	out := c.argErrorf(code, format, args...).WithCause(err)
	out.Message += ": " + literalMessage(err)
	if litErr != nil && column > 0 && c.line.Text != "" {
		out.Column = column + litErr.Offset
		out.EndColumn = out.Column
	}
	return out
}

func literalMessage(err error) string {
	var litErr *errors.LiteralError
	if errors.As(err, &litErr) {
		return litErr.Message
	}
	return err.Error()
}

func parseOperand(text string) (int, error) {
	v, err := literal.Int(text)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
