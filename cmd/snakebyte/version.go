package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/op"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "snakebyte %s\n", version)
			fmt.Fprintf(a.stdout, "commit: %s\n", commit)
			fmt.Fprintf(a.stdout, "built: %s\n", date)
			fmt.Fprintf(a.stdout, "opcodes: %s\n", op.Default().Version())
			fmt.Fprintf(a.stdout, "unit format: %d\n", bytecode.FormatVersion)
			return nil
		},
	}
}
