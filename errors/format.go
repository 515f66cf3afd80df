package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors with colors in a Rust-like style.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = color.New(color.FgRed)
	colorErrorBold = color.New(color.FgHiRed, color.Bold)
	colorCode      = color.New(color.FgHiBlack)
	colorLocation  = color.New(color.FgCyan)
	colorLineNum   = color.New(color.FgHiBlack)
	colorSource    = color.New(color.FgWhite)
	colorCaret     = color.New(color.FgHiRed)
	colorHint      = color.New(color.FgHiYellow)
	colorNote      = color.New(color.FgHiBlue)
)

// FormattedError represents an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "runtime error", etc.
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLines []SourceLineEntry
	Hint        string
	Note        string
}

// SourceLineEntry represents a line of source code with its number.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool // True if this is the line with the error
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

// Format formats the error as a string.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix formats the error with an optional prefix like "1/5".
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	lineNumWidth := 2
	if err.Line >= 100 {
		lineNumWidth = len(fmt.Sprintf("%d", err.Line))
	}

	f.writeHeader(&b, err, prefix)
	f.writeLocation(&b, err, lineNumWidth)
	f.writeSource(&b, err, lineNumWidth)
	if err.Hint != "" {
		f.writeAnnotation(&b, colorHint, "hint: ", err.Hint, lineNumWidth, true)
	}
	if err.Note != "" {
		f.writeAnnotation(&b, colorNote, "note: ", err.Note, lineNumWidth, false)
	}
	return b.String()
}

func (f *Formatter) writeHeader(b *strings.Builder, err *FormattedError, prefix string) {
	label := "error"
	if err.Kind != "" && err.Kind != "error" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold, label))
	if err.Code != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", err.Code)))
	} else if prefix != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", prefix)))
	}
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")
}

func (f *Formatter) writeLocation(b *strings.Builder, err *FormattedError, lineNumWidth int) {
	if err.Line == 0 && err.Filename == "" {
		return
	}
	b.WriteString(strings.Repeat(" ", lineNumWidth))
	b.WriteString(f.paint(colorLocation, "-->"))
	b.WriteString(" ")

	loc := err.Filename
	if err.Line > 0 {
		if loc != "" {
			loc += ":"
		}
		loc += fmt.Sprintf("%d", err.Line)
		if err.Column > 0 {
			loc += fmt.Sprintf(":%d", err.Column)
		}
	}
	b.WriteString(f.paint(colorLocation, loc))
	b.WriteString("\n")
}

func (f *Formatter) writeSource(b *strings.Builder, err *FormattedError, lineNumWidth int) {
	if len(err.SourceLines) == 0 {
		return
	}
	padding := strings.Repeat(" ", lineNumWidth)

	b.WriteString(padding)
	b.WriteString(f.paint(colorLineNum, " |"))
	b.WriteString("\n")

	for _, line := range err.SourceLines {
		b.WriteString(f.paint(colorLineNum, fmt.Sprintf("%*d", lineNumWidth, line.Number)))
		b.WriteString(f.paint(colorLineNum, " | "))
		b.WriteString(f.paint(colorSource, line.Text))
		b.WriteString("\n")

		if line.IsMain && err.Column > 0 {
			b.WriteString(padding)
			b.WriteString(f.paint(colorLineNum, " | "))
			b.WriteString(strings.Repeat(" ", err.Column-1))
			caretLen := 1
			if err.EndColumn > err.Column {
				caretLen = err.EndColumn - err.Column + 1
			}
			b.WriteString(f.paint(colorCaret, strings.Repeat("^", caretLen)))
			b.WriteString("\n")
		}
	}
}

func (f *Formatter) writeAnnotation(b *strings.Builder, c *color.Color, label, text string, lineNumWidth int, separate bool) {
	padding := strings.Repeat(" ", lineNumWidth)
	if separate {
		b.WriteString(padding)
		b.WriteString(f.paint(colorLineNum, " |"))
		b.WriteString("\n")
	}
	b.WriteString(padding)
	b.WriteString(f.paint(colorLineNum, " = "))
	b.WriteString(f.paint(c, label))
	b.WriteString(text)
	b.WriteString("\n")
}

// FormatMultiple formats multiple errors with consistent styling.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}

	var b strings.Builder
	total := len(errs)
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, total)))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorErrorBold, fmt.Sprintf("found %d errors", total)))
	b.WriteString("\n")
	return b.String()
}

// Flatten collects the formattable errors contained in err. Errors that
// wrap several causes (for example a multierror) are expanded; plain errors
// become a message-only entry.
func Flatten(err error) []*FormattedError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(FormattableError); ok {
		return []*FormattedError{fe.ToFormatted()}
	}
	if multi, ok := err.(interface{ WrappedErrors() []error }); ok {
		var out []*FormattedError
		for _, e := range multi.WrappedErrors() {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	var fe FormattableError
	if As(err, &fe) {
		return []*FormattedError{fe.ToFormatted()}
	}
	return []*FormattedError{{Kind: "error", Message: err.Error()}}
}
