package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// colorize reports whether colored output should be written to w.
func colorize(w io.Writer) bool {
	return !color.NoColor && isTerminal(w)
}

func prettyFormat(data []byte) ([]byte, error) {
	return prettyjson.Format(data)
}

func prettyMarshal(v any) ([]byte, error) {
	return prettyjson.Marshal(v)
}
