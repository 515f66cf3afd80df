package compiler

import (
	"strings"
	"unicode"

	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/literal"
)

// Directive names.
const (
	DefLabel = "DEF_LABEL"
	DefName  = "DEF_NAME"
	DefVar   = "DEF_VAR"
	DefConst = "DEF_CONST"
	Raw      = "RAW"
)

type directive func(c *Compiler, arg string) error

// directives are operations handled by the compiler rather than the opcode
// table. The argument passed to each is trimmed and non-empty.
var directives = map[string]directive{
	DefLabel: (*Compiler).defineLabel,
	DefName:  (*Compiler).defineName,
	DefVar:   (*Compiler).defineVar,
	DefConst: (*Compiler).defineConst,
	Raw:      (*Compiler).emitRaw,
}

func directiveNames() []string {
	names := make([]string, 0, len(directives))
	for name := range directives {
		names = append(names, name)
	}
	return names
}

func (c *Compiler) defineLabel(name string) error {
	offset := len(c.code)
	replaced, err := c.labels.Define(name, offset)
	if err != nil {
		return c.locate(err.(*errors.AssemblyError))
	}
	if replaced {
		c.log.Warn().Str("label", name).Int("offset", offset).Int("line", c.line.Number).
			Msg("label redefined")
	}
	c.log.Debug().Str("label", name).Int("offset", offset).Msg("define label")
	return nil
}

func (c *Compiler) defineName(name string) error {
	index := c.names.Intern(name)
	c.log.Debug().Str("name", name).Int("index", index).Msg("define name")
	return nil
}

func (c *Compiler) defineVar(name string) error {
	index := c.vars.Intern(name)
	c.log.Debug().Str("var", name).Int("index", index).Msg("define var")
	return nil
}

// defineConst handles "DEF_CONST name literal".
func (c *Compiler) defineConst(arg string) error {
	split := strings.IndexFunc(arg, unicode.IsSpace)
	if split < 0 {
		return c.argErrorf(errors.E2009, "DEF_CONST %s requires a literal value", arg).
			WithNote("usage: DEF_CONST <name> <literal>")
	}
	name := arg[:split]
	text := strings.TrimSpace(arg[split:])

	column := 0
	if c.line.ArgColumn > 0 {
		column = c.line.ArgColumn + len(arg) - len(text)
	}
	value, err := literal.Parse(text)
	if err != nil {
		return c.literalError(err, column, "invalid literal for constant %q", name)
	}
	index, err := c.consts.Define(name, value)
	if err != nil {
		return c.locate(err.(*errors.AssemblyError))
	}
	c.log.Debug().Str("const", name).Int("index", index).Str("value", literal.Repr(value)).
		Msg("define const")
	return nil
}

// emitRaw appends the bytes of a bytes literal or integer sequence verbatim.
func (c *Compiler) emitRaw(text string) error {
	data, err := literal.Bytes(text)
	if err != nil {
		c.log.Error().Err(err).Str("text", text).Int("line", c.line.Number).
			Msg("failed to evaluate RAW bytes")
		return c.literalError(err, c.line.ArgColumn, "invalid RAW bytes %q", text)
	}
	c.log.Debug().Int("offset", len(c.code)).Int("size", len(data)).Msg("emit raw")
	c.code = append(c.code, data...)
	return nil
}
