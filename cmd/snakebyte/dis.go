package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/snakebyte"
	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/dis"
)

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis FILE",
		Short: "Disassemble assembly source or a serialized unit",
		Args:  cobra.ExactArgs(1),
		RunE:  a.disHandler,
	}
	cmd.Flags().Bool("json", false, "print instructions as JSON")
	return cmd
}

func (a *app) disHandler(cmd *cobra.Command, args []string) error {
	unit, err := a.loadUnit(cmd, args[0])
	if err != nil {
		return err
	}
	instructions, err := dis.Disassemble(unit)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if !asJSON {
		dis.Print(instructions, a.stdout)
		return nil
	}
	var data []byte
	if colorize(a.stdout) {
		data, err = prettyMarshal(instructions)
	} else {
		data, err = json.MarshalIndent(instructions, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

// loadUnit reads a serialized unit, or assembles the file when it does not
// hold JSON.
func (a *app) loadUnit(cmd *cobra.Command, name string) (*bytecode.Unit, error) {
	path, err := homedir.Expand(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		unit, err := bytecode.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return unit, nil
	}
	return snakebyte.AssembleFile(cmd.Context(), path, a.assembleOptions()...)
}
