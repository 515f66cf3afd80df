package compiler

import (
	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/op"
	"github.com/deepnoodle-ai/snakebyte/source"
)

// PendingJump is a jump whose operand has not been patched yet.
type PendingJump struct {
	// Site is the offset of the first operand byte.
	Site int
	// Label is the target label name.
	Label string
	// Line is the source line of the jump, or 0 if unknown.
	Line int

	src source.Line
}

func (c *Compiler) emitJump(info op.Info, label string) error {
	offset := len(c.code)
	c.code = append(c.code, byte(info.Code), 0, 0)
	c.pending = append(c.pending, PendingJump{
		Site:  offset + 1,
		Label: label,
		Line:  c.line.Number,
		src:   c.line,
	})
	c.log.Debug().Str("op", info.Name).Int("offset", offset).Str("label", label).Msg("emit jump")
	return nil
}

// resolveJumps patches every pending jump with its label's offset. Jumps
// that resolve are removed from the pending list; every jump to an
// undefined label is reported in one combined error.
func (c *Compiler) resolveJumps() error {
	var result *multierror.Error
	var unresolved []PendingJump
	for _, jump := range c.pending {
		target, ok := c.labels.Offset(jump.Label)
		if !ok {
			err := errors.Newf(errors.E2003, "undefined label %q", jump.Label).
				WithSuggestions(errors.SuggestSimilar(jump.Label, c.labels.Names())).
				WithNote("define it with DEF_LABEL " + jump.Label)
			locateAt(err, c.cfg.Filename, jump.src.Number, jump.src.Text)
			if jump.src.ArgColumn > 0 {
				err.Column = jump.src.ArgColumn
				err.EndColumn = len(jump.src.Text)
			}
			result = multierror.Append(result, err)
			unresolved = append(unresolved, jump)
			continue
		}
		if err := c.patch(jump, target); err != nil {
			result = multierror.Append(result, err)
			unresolved = append(unresolved, jump)
		}
	}
	c.pending = unresolved
	if result != nil {
		result.ErrorFormat = formatErrors
	}
	return result.ErrorOrNil()
}

func (c *Compiler) patch(jump PendingJump, target int) error {
	if err := CheckOperand(target); err != nil {
		if c.cfg.StrictOperands {
			return locateAt(err.(*errors.AssemblyError), c.cfg.Filename, jump.src.Number, jump.src.Text)
		}
		c.log.Warn().Str("label", jump.Label).Int("offset", target).
			Msg("jump target overflows 16 bits and was masked")
	}
	c.code[jump.Site], c.code[jump.Site+1] = Encode16(target)
	c.log.Debug().Int("site", jump.Site).Str("label", jump.Label).Int("target", target).Msg("patch jump")
	return nil
}

func formatErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	out := ""
	for i, err := range errs {
		if i > 0 {
			out += "\n\n"
		}
		out += err.Error()
	}
	return out
}
