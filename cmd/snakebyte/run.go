package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/snakebyte"
	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/dis"
	"github.com/deepnoodle-ai/snakebyte/vm"
)

type mode int

const (
	modeRun mode = iota
	modeDry
	modeWrite
)

func validateRootArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no input file provided")
	}
	_, _, err := parseMode(args[1:])
	return err
}

// parseMode interprets the positional arguments that follow FILE.
func parseMode(args []string) (mode, string, error) {
	switch {
	case len(args) == 0:
		return modeRun, "", nil
	case args[0] == "dry" && len(args) == 1:
		return modeDry, "", nil
	case args[0] == "write" && len(args) == 2:
		return modeWrite, args[1], nil
	case args[0] == "write":
		return 0, "", fmt.Errorf("write requires exactly one output path")
	}
	return 0, "", fmt.Errorf("unexpected arguments %q (expected \"dry\" or \"write OUT\")", args)
}

func (a *app) runHandler(cmd *cobra.Command, args []string) error {
	m, out, err := parseMode(args[1:])
	if err != nil {
		return err
	}
	if a.v.GetBool("dry") {
		m = modeDry
	}
	if w := a.v.GetString("write"); w != "" {
		m, out = modeWrite, w
	}

	path, err := homedir.Expand(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	opts := a.assembleOptions()

	switch m {
	case modeDry:
		unit, err := snakebyte.AssembleFile(ctx, path, append(opts, snakebyte.WithTrace(a.stdout))...)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout)
		return dis.Dump(unit, a.stdout)
	case modeWrite:
		unit, err := snakebyte.AssembleFile(ctx, path, opts...)
		if err != nil {
			return err
		}
		return a.writeUnit(unit, out)
	}

	unit, err := snakebyte.AssembleFile(ctx, path, opts...)
	if err != nil {
		return err
	}
	runOpts := []snakebyte.Option{
		snakebyte.WithStdout(a.stdout),
		snakebyte.WithDiagnostics(a.stderr),
	}
	if a.v.GetBool("trace") {
		runOpts = append(runOpts, snakebyte.WithObserver(vm.NewTraceObserver(a.stderr)))
	}
	result, err := snakebyte.Run(ctx, unit, runOpts...)
	if err != nil {
		return err
	}
	a.log.Debug().Str("unit", unit.UnitName()).Str("result", vm.Repr(result)).Msg("unit returned")
	return nil
}

// writeUnit serializes the unit to out, or to stdout when out is "-".
func (a *app) writeUnit(unit *bytecode.Unit, out string) error {
	var data []byte
	var err error
	if a.v.GetBool("pretty") {
		data, err = bytecode.MarshalIndent(unit)
	} else {
		data, err = bytecode.Marshal(unit)
	}
	if err != nil {
		return err
	}

	if out == "-" {
		if a.v.GetBool("pretty") && colorize(a.stdout) {
			if colored, err := prettyFormat(data); err == nil {
				data = colored
			}
		}
		_, err := fmt.Fprintln(a.stdout, string(data))
		return err
	}

	path, err := homedir.Expand(out)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return err
	}
	a.log.Info().Str("path", path).Str("id", unit.ID()).Int("bytes", unit.CodeLen()).Msg("wrote unit")
	return nil
}
