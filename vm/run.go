package vm

import (
	"context"

	"github.com/deepnoodle-ai/snakebyte/bytecode"
)

// Run the given unit in a new Virtual Machine and return the result.
func Run(ctx context.Context, unit *bytecode.Unit, options ...Option) (Value, error) {
	return New(unit, options...).Run(ctx)
}
