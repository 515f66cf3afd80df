package errors

import (
	"fmt"
	"strings"
)

// AssemblyError represents an assembly failure with source context.
type AssemblyError struct {
	Code        ErrorCode
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
	Err         error
}

// Error implements the error interface.
func (e *AssemblyError) Error() string {
	var b strings.Builder
	b.WriteString("assembly error: ")
	b.WriteString(e.Message)
	if e.Filename != "" || e.Line > 0 {
		b.WriteString("\n\nlocation: ")
		if e.Filename != "" {
			b.WriteString(e.Filename)
			b.WriteString(":")
		}
		if e.Column > 0 {
			fmt.Fprintf(&b, "%d:%d", e.Line, e.Column)
			fmt.Fprintf(&b, " (line %d, column %d)", e.Line, e.Column)
		} else {
			fmt.Fprintf(&b, "%d", e.Line)
		}
	}
	return b.String()
}

// Unwrap exposes the sentinel for the error code and the underlying cause.
func (e *AssemblyError) Unwrap() []error {
	var errs []error
	if s := e.Code.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *AssemblyError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *AssemblyError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:      e.Code,
		Kind:      "error",
		Message:   e.Message,
		Filename:  e.Filename,
		Line:      e.Line,
		Column:    e.Column,
		EndColumn: e.EndColumn,
		Note:      e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	if len(e.Suggestions) > 0 {
		fe.Hint = FormatSuggestions(e.Suggestions)
	}
	return fe
}

// Newf creates an AssemblyError with the given code and formatted message.
// Location fields are filled in by the caller that knows the source line.
func Newf(code ErrorCode, format string, args ...any) *AssemblyError {
	return &AssemblyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithCause attaches an underlying error.
func (e *AssemblyError) WithCause(err error) *AssemblyError {
	e.Err = err
	return e
}

// WithSuggestions attaches "did you mean" candidates.
func (e *AssemblyError) WithSuggestions(s []Suggestion) *AssemblyError {
	e.Suggestions = s
	return e
}

// WithNote attaches an additional note shown below the source line.
func (e *AssemblyError) WithNote(note string) *AssemblyError {
	e.Note = note
	return e
}
