// Package table renders bordered text tables. Cell widths ignore ANSI color
// sequences, so colored cells stay aligned.
package table

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment positions text within a column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table accumulates rows and writes them on Render.
type Table struct {
	w           io.Writer
	header      []string
	headerAlign []Alignment
	columnAlign []Alignment
	rows        [][]string
}

// NewTable returns a table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets the alignment of each body column.
func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.columnAlign = align
	return t
}

// WithHeaderAlignment sets the alignment of each header cell.
func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

// Append adds a row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

// Render writes the table.
func (t *Table) Render() {
	columns := len(t.header)
	for _, row := range t.rows {
		columns = max(columns, len(row))
	}
	widths := make([]int, columns)
	for i, h := range t.header {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], visibleWidth(c))
		}
	}

	var b strings.Builder
	border := func() {
		b.WriteByte('+')
		for _, width := range widths {
			b.WriteString(strings.Repeat("-", width+2))
			b.WriteByte('+')
		}
		b.WriteByte('\n')
	}
	writeRow := func(cells []string, align []Alignment) {
		b.WriteByte('|')
		for i, width := range widths {
			var text string
			if i < len(cells) {
				text = cells[i]
			}
			b.WriteByte(' ')
			b.WriteString(pad(text, width, alignmentAt(align, i)))
			b.WriteString(" |")
		}
		b.WriteByte('\n')
	}

	border()
	if len(t.header) > 0 {
		writeRow(t.header, t.headerAlign)
		border()
	}
	for _, row := range t.rows {
		writeRow(row, t.columnAlign)
	}
	border()
	io.WriteString(t.w, b.String())
}

func alignmentAt(align []Alignment, i int) Alignment {
	if i < len(align) {
		return align[i]
	}
	return AlignLeft
}

func visibleWidth(s string) int {
	return utf8.RuneCountInString(stripANSI(s))
}

func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b") {
		return s
	}
	return ansiPattern.ReplaceAllString(s, "")
}

func pad(text string, width int, align Alignment) string {
	gap := width - visibleWidth(text)
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + text
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", gap-left)
	default:
		return text + strings.Repeat(" ", gap)
	}
}
