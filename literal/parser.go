package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/deepnoodle-ai/snakebyte/errors"
)

const (
	invalidSyntax = errors.E1001
	unterminated  = errors.E1002
	invalidNumber = errors.E1003
	invalidEscape = errors.E1004
)

// maxDepth bounds nesting of tuples and lists.
const maxDepth = 64

type parser struct {
	text  string
	pos   int
	depth int
}

func (p *parser) errorf(code errors.ErrorCode, format string, args ...any) error {
	return p.errorAt(p.pos, code, format, args...)
}

func (p *parser) errorAt(pos int, code errors.ErrorCode, format string, args ...any) error {
	return &errors.LiteralError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Text:    p.text,
		Offset:  pos,
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *parser) peek() byte {
	return p.text[p.pos]
}

func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.text) {
		return 0
	}
	return p.text[p.pos+n]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseValue() (Value, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf(invalidSyntax, "unexpected end of literal")
	}
	c := p.peek()
	switch {
	case c == '(':
		return p.parseTuple()
	case c == '[':
		return p.parseList()
	case c == '\'' || c == '"':
		return p.parseString(false, false)
	case isDigit(c) || (c == '.' && isDigit(p.peekAt(1))):
		return p.parseNumber(false)
	case c == '-' || c == '+':
		p.pos++
		p.skipSpace()
		if p.eof() || !(isDigit(p.peek()) || p.peek() == '.') {
			return nil, p.errorf(invalidSyntax, "expected number after %q", c)
		}
		return p.parseNumber(c == '-')
	case isIdentStart(c):
		return p.parseWord()
	}
	return nil, p.errorf(invalidSyntax, "unexpected character %q", c)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return p.errorf(invalidSyntax, "literal nested too deeply")
	}
	return nil
}

func (p *parser) parseTuple() (Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	start := p.pos
	p.pos++ // (
	p.skipSpace()
	if !p.eof() && p.peek() == ')' {
		p.pos++
		return Tuple{}, nil
	}
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorAt(start, invalidSyntax, "unclosed '('")
	}
	if p.peek() == ')' {
		// A parenthesized value without a comma is just the value.
		p.pos++
		return first, nil
	}
	if p.peek() != ',' {
		return nil, p.errorf(invalidSyntax, "expected ',' or ')' but found %q", p.peek())
	}
	rest, err := p.parseSequenceTail(')')
	if err != nil {
		return nil, err
	}
	return append(Tuple{first}, rest...), nil
}

func (p *parser) parseList() (Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	start := p.pos
	p.pos++ // [
	p.skipSpace()
	items := List{}
	if !p.eof() && p.peek() == ']' {
		p.pos++
		return items, nil
	}
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	items = append(items, first)
	p.skipSpace()
	if p.eof() {
		return nil, p.errorAt(start, invalidSyntax, "unclosed '['")
	}
	if p.peek() == ']' {
		p.pos++
		return items, nil
	}
	if p.peek() != ',' {
		return nil, p.errorf(invalidSyntax, "expected ',' or ']' but found %q", p.peek())
	}
	rest, err := p.parseSequenceTail(']')
	if err != nil {
		return nil, err
	}
	return append(items, rest...), nil
}

// parseSequenceTail parses ", item, item [,] close" starting at a comma. A
// zero close byte means the sequence runs to the end of the text.
func (p *parser) parseSequenceTail(close byte) ([]Value, error) {
	var items []Value
	for {
		p.skipSpace()
		if p.eof() {
			if close == 0 {
				return items, nil
			}
			return nil, p.errorf(invalidSyntax, "expected %q before end of literal", close)
		}
		c := p.peek()
		if close != 0 && c == close {
			p.pos++
			return items, nil
		}
		if c != ',' {
			return nil, p.errorf(invalidSyntax, "expected ',' but found %q", c)
		}
		p.pos++
		p.skipSpace()
		// Trailing comma.
		if p.eof() && close == 0 {
			return items, nil
		}
		if !p.eof() && close != 0 && p.peek() == close {
			p.pos++
			return items, nil
		}
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *parser) parseWord() (Value, error) {
	start := p.pos
	for !p.eof() && isIdentPart(p.peek()) {
		p.pos++
	}
	word := p.text[start:p.pos]
	if !p.eof() && (p.peek() == '\'' || p.peek() == '"') {
		switch strings.ToLower(word) {
		case "b":
			return p.parseString(true, false)
		case "r":
			return p.parseString(false, true)
		case "rb", "br":
			return p.parseString(true, true)
		}
	}
	switch word {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	}
	return nil, p.errorAt(start, invalidSyntax, "unexpected name %q", word)
}

func (p *parser) parseNumber(negative bool) (Value, error) {
	start := p.pos
	prefixed := p.peek() == '0' && strings.ContainsRune("xXoObB", rune(p.peekAt(1)))
	for !p.eof() && p.inNumber(start, prefixed) {
		p.pos++
	}
	raw := p.text[start:p.pos]
	digits, ok := stripUnderscores(raw)
	if !ok {
		return nil, p.errorAt(start, invalidNumber, "invalid number %q", raw)
	}
	sign := ""
	if negative {
		sign = "-"
	}

	if prefixed {
		base := 16
		switch digits[1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if len(digits) == 2 {
			return nil, p.errorAt(start, invalidNumber, "invalid number %q", raw)
		}
		v, err := strconv.ParseInt(sign+digits[2:], base, 64)
		if err != nil {
			return nil, p.errorAt(start, invalidNumber, "invalid number %q", raw)
		}
		return v, nil
	}

	if strings.ContainsAny(digits, ".eE") {
		v, err := strconv.ParseFloat(sign+digits, 64)
		if err != nil {
			return nil, p.errorAt(start, invalidNumber, "invalid number %q", raw)
		}
		return v, nil
	}

	if len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" {
		return nil, p.errorAt(start, invalidNumber, "leading zeros in decimal integer %q", raw)
	}
	v, err := strconv.ParseInt(sign+digits, 10, 64)
	if err != nil {
		return nil, p.errorAt(start, invalidNumber, "invalid number %q", raw)
	}
	return v, nil
}

func (p *parser) inNumber(start int, prefixed bool) bool {
	c := p.peek()
	if isDigit(c) || isLetter(c) || c == '_' || c == '.' {
		return true
	}
	if (c == '+' || c == '-') && !prefixed && p.pos > start {
		prev := p.text[p.pos-1]
		return prev == 'e' || prev == 'E'
	}
	return false
}

// stripUnderscores removes digit separators. Each underscore must sit
// between two digits, or directly after a base prefix.
func stripUnderscores(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 {
			return "", false
		}
		prev, next := s[i-1], s[i+1]
		afterPrefix := i == 2 && s[0] == '0' && isLetter(prev)
		if !isHexDigit(next) || !(isHexDigit(prev) || afterPrefix) {
			return "", false
		}
	}
	return b.String(), true
}

func (p *parser) parseString(isBytes, isRaw bool) (Value, error) {
	start := p.pos
	quote := p.peek()
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return nil, p.errorAt(start, unterminated, "unterminated string")
		}
		c := p.peek()
		switch {
		case c == quote:
			p.pos++
			if isBytes {
				return []byte(b.String()), nil
			}
			return b.String(), nil
		case c == '\n':
			return nil, p.errorAt(start, unterminated, "unterminated string")
		case c == '\\' && isRaw:
			// Raw strings keep the backslash but still cannot end on an
			// escaped quote.
			b.WriteByte(c)
			p.pos++
			if !p.eof() {
				b.WriteByte(p.peek())
				p.pos++
			}
		case c == '\\':
			if err := p.readEscape(&b, isBytes); err != nil {
				return nil, err
			}
		case isBytes && c >= 0x80:
			return nil, p.errorf(invalidSyntax, "bytes can only contain ASCII literal characters")
		default:
			r, size := utf8.DecodeRuneInString(p.text[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *parser) readEscape(b *strings.Builder, isBytes bool) error {
	start := p.pos
	p.pos++ // backslash
	if p.eof() {
		return p.errorAt(start, unterminated, "unterminated string")
	}
	c := p.peek()
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'x':
		v, err := p.readHex(start, 2)
		if err != nil {
			return err
		}
		if isBytes {
			b.WriteByte(byte(v))
		} else {
			b.WriteRune(rune(v))
		}
	case 'u', 'U':
		if isBytes {
			return p.errorAt(start, invalidEscape, "invalid escape sequence '\\%c' in bytes", c)
		}
		n := 4
		if c == 'U' {
			n = 8
		}
		v, err := p.readHex(start, n)
		if err != nil {
			return err
		}
		if !utf8.ValidRune(rune(v)) {
			return p.errorAt(start, invalidEscape, "invalid code point in escape sequence")
		}
		b.WriteRune(rune(v))
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int(c - '0')
		for i := 0; i < 2 && !p.eof() && p.peek() >= '0' && p.peek() <= '7'; i++ {
			v = v*8 + int(p.peek()-'0')
			p.pos++
		}
		if isBytes {
			if v > 0xff {
				return p.errorAt(start, invalidEscape, "octal escape out of range")
			}
			b.WriteByte(byte(v))
		} else {
			b.WriteRune(rune(v))
		}
	default:
		return p.errorAt(start, invalidEscape, "invalid escape sequence '\\%c'", c)
	}
	return nil
}

func (p *parser) readHex(start, n int) (uint64, error) {
	if p.pos+n > len(p.text) {
		return 0, p.errorAt(start, invalidEscape, "truncated escape sequence")
	}
	digits := p.text[p.pos : p.pos+n]
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || strings.ContainsAny(digits, "+-_") {
		return 0, p.errorAt(start, invalidEscape, "invalid hex digits in escape sequence")
	}
	p.pos += n
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return isLetter(c) || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
