package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/snakebyte"
	"github.com/deepnoodle-ai/snakebyte/bytecode"
	"github.com/deepnoodle-ai/snakebyte/errors"
)

// app holds the state of one CLI invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
		log:    zerolog.Nop(),
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snakebyte FILE [dry | write OUT]",
		Short: "Assemble and run snakebyte assembly",
		Long: `Snakebyte assembles line-oriented bytecode assembly into a unit and runs
it on the reference virtual machine.

With "dry", each consumed instruction is echoed and the unit is
disassembled instead of run. With "write OUT", the unit is serialized to
OUT as JSON ("-" writes to stdout).`,
		Args:              validateRootArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.initConfig() },
		RunE:              a.runHandler,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.snakebyte.yaml)")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.Int("stack-size", bytecode.DefaultStackSize, "stack size recorded in the unit")
	pf.Int("flags", 0, "flags recorded in the unit")
	pf.String("unit-name", bytecode.DefaultUnitName, "unit name recorded in the unit")
	pf.String("source-name", bytecode.DefaultSourceName, "source name recorded in the unit")
	pf.Bool("strict-operands", false, "fail on operands that do not fit in 16 bits")
	pf.Bool("allow-label-redefinition", false, "let a later DEF_LABEL move an existing label")

	f := cmd.Flags()
	f.Bool("dry", false, "echo consumed instructions and disassemble instead of running")
	f.String("write", "", "serialize the unit to this path instead of running")
	f.Bool("pretty", false, "indent serialized output")
	f.Bool("trace", false, "trace executed instructions to stderr")

	a.v.BindPFlags(pf)
	a.v.BindPFlags(f)

	cmd.AddCommand(a.disCmd(), a.versionCmd())
	return cmd
}

// initConfig reads the config file and environment, then applies the global
// flags.
func (a *app) initConfig() error {
	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return err
		}
		a.v.SetConfigFile(path)
	} else {
		if home, err := homedir.Dir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigName(".snakebyte")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("snakebyte")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{
		Out:        a.stderr,
		NoColor:    color.NoColor,
		TimeFormat: time.Kitchen,
	}).Level(level).With().Timestamp().Logger()
	return nil
}

// assembleOptions returns the assembler options selected by flags, the
// environment and the config file.
func (a *app) assembleOptions() []snakebyte.Option {
	return []snakebyte.Option{
		snakebyte.WithStackSize(a.v.GetInt("stack-size")),
		snakebyte.WithFlags(a.v.GetInt("flags")),
		snakebyte.WithUnitName(a.v.GetString("unit-name")),
		snakebyte.WithSourceName(a.v.GetString("source-name")),
		snakebyte.WithStrictOperands(a.v.GetBool("strict-operands")),
		snakebyte.WithLabelRedefinition(a.v.GetBool("allow-label-redefinition")),
		snakebyte.WithLogger(a.log),
	}
}

func (a *app) printError(err error) {
	formatter := errors.NewFormatter(!color.NoColor)
	fmt.Fprint(a.stderr, formatter.FormatMultiple(errors.Flatten(err)))
}
