package compiler

import (
	"github.com/deepnoodle-ai/snakebyte/bytecode"
)

// Build resolves pending jumps and returns the compiled unit. No unit is
// returned if any jump names an undefined label. Build may be called again
// after further emission.
func (c *Compiler) Build() (*bytecode.Unit, error) {
	if err := c.resolveJumps(); err != nil {
		return nil, err
	}
	unit := bytecode.NewUnit(bytecode.UnitParams{
		Code:       c.code,
		Constants:  c.consts.Values(),
		Names:      c.names.Names(),
		VarNames:   c.vars.Names(),
		StackSize:  c.cfg.StackSize,
		Flags:      c.cfg.Flags,
		UnitName:   c.cfg.UnitName,
		SourceName: c.cfg.SourceName,
		Filename:   c.cfg.Filename,
		OpVersion:  c.table.Version(),
	})
	c.log.Debug().
		Str("id", unit.ID()).
		Int("code_size", unit.CodeLen()).
		Int("constants", unit.ConstantCount()).
		Int("names", unit.NameCount()).
		Int("varnames", unit.VarNameCount()).
		Msg("built unit")
	return unit, nil
}
