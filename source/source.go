// Package source reads assembly source into operation lines.
//
// Each physical line is trimmed. Blank lines and lines starting with ';' are
// skipped. The remaining text is split on the first run of whitespace into
// an operation and an optional argument.
package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// maxLineSize bounds a single source line.
const maxLineSize = 1024 * 1024

// Line is one operation read from source.
type Line struct {
	// Number is the 1-based physical line number.
	Number int
	// Operation is the first whitespace-delimited token.
	Operation string
	// Argument is the rest of the line with surrounding whitespace
	// removed, or nil if the line holds only an operation.
	Argument *string
	// ArgColumn is the 1-based column of Argument within Text.
	ArgColumn int
	// Text is the trimmed line.
	Text string
}

// HasArgument returns true if the line carries an argument.
func (l Line) HasArgument() bool {
	return l.Argument != nil
}

// Arg returns the argument, or "" if there is none.
func (l Line) Arg() string {
	if l.Argument == nil {
		return ""
	}
	return *l.Argument
}

func (l Line) String() string {
	if l.Argument == nil {
		return l.Operation
	}
	return l.Operation + " " + *l.Argument
}

// Read reads all operation lines from r.
func Read(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var lines []Line
	number := 0
	for scanner.Scan() {
		number++
		if line, ok := ParseLine(number, scanner.Text()); ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", number+1, err)
	}
	return lines, nil
}

// Parse reads all operation lines from a string.
func Parse(src string) []Line {
	lines, _ := Read(strings.NewReader(src))
	return lines
}

// ParseLine parses a single physical line. It returns false for blank and
// comment lines.
func ParseLine(number int, raw string) (Line, bool) {
	text := strings.TrimSpace(raw)
	if text == "" || strings.HasPrefix(text, ";") {
		return Line{}, false
	}
	line := Line{Number: number, Text: text}
	split := strings.IndexFunc(text, unicode.IsSpace)
	if split < 0 {
		line.Operation = text
		return line, true
	}
	line.Operation = text[:split]
	rest := strings.TrimLeftFunc(text[split:], unicode.IsSpace)
	line.ArgColumn = len(text) - len(rest) + 1
	line.Argument = &rest
	return line, true
}
