// Package literal evaluates the literal notation accepted by DEF_CONST and
// RAW directives.
//
// The grammar covers integers (decimal, 0x, 0o and 0b forms with optional
// sign and underscores), floats, single or double quoted strings with
// escapes, b'' byte strings, True, False, None, parenthesized tuples and
// bracketed lists. Evaluation never executes code.
//
// Parsed values use these Go types:
//
//	int     int64
//	float   float64
//	str     string
//	bytes   []byte
//	bool    bool
//	None    nil
//	tuple   Tuple
//	list    List
package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is an evaluated literal.
type Value = any

// Tuple is an immutable sequence literal, written (a, b).
type Tuple []Value

// List is a sequence literal, written [a, b].
type List []Value

// Parse evaluates the literal text. Leading and trailing whitespace is
// ignored. A top-level comma-separated sequence without parentheses is a
// tuple, so "1, 2" equals "(1, 2)".
func Parse(text string) (Value, error) {
	p := &parser{text: text}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf(invalidSyntax, "empty literal")
	}
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() && p.peek() == ',' {
		items := Tuple{first}
		rest, err := p.parseSequenceTail(0)
		if err != nil {
			return nil, err
		}
		return append(items, rest...), nil
	}
	if !p.eof() {
		return nil, p.errorf(invalidSyntax, "unexpected %q after literal", p.peek())
	}
	return first, nil
}

// TypeName returns the type name of an evaluated literal.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "none"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case []byte:
		return "bytes"
	case bool:
		return "bool"
	case Tuple:
		return "tuple"
	case List:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Equal reports whether two evaluated literals are identical in type and
// value. Sequences are compared element by element.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case int64:
		bv, ok := b.(int64)
		return ok && a == bv
	case float64:
		bv, ok := b.(float64)
		return ok && (a == bv || (math.IsNaN(a) && math.IsNaN(bv)))
	case string:
		bv, ok := b.(string)
		return ok && a == bv
	case []byte:
		bv, ok := b.([]byte)
		return ok && string(a) == string(bv)
	case bool:
		bv, ok := b.(bool)
		return ok && a == bv
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && equalItems(a, bv)
	case List:
		bv, ok := b.(List)
		return ok && equalItems(a, bv)
	}
	return false
}

func equalItems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Repr returns the literal notation for v. Parse(Repr(v)) yields a value
// Equal to v for every value Parse can produce.
func Repr(v Value) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case string:
		return quoteString(v)
	case []byte:
		return "b" + quoteBytes(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case Tuple:
		if len(v) == 1 {
			return "(" + Repr(v[0]) + ",)"
		}
		return "(" + joinRepr(v) + ")"
	case List:
		return "[" + joinRepr(v) + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinRepr(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Repr(item)
	}
	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func chooseQuote(s string) byte {
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		return '"'
	}
	return '\''
}

func quoteString(s string) string {
	q := chooseQuote(s)
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func quoteBytes(data []byte) string {
	q := chooseQuote(string(data))
	var b strings.Builder
	b.WriteByte(q)
	for _, c := range data {
		switch {
		case c == q || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}
