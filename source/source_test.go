package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		raw    string
		op     string
		arg    *string
		column int
	}{
		{"RETURN_VALUE", "RETURN_VALUE", nil, 0},
		{"   NOP   ", "NOP", nil, 0},
		{"LOAD_CONST answer", "LOAD_CONST", ptr("answer"), 12},
		{"\tLOAD_CONST \t answer  ", "LOAD_CONST", ptr("answer"), 14},
		{"DEF_CONST answer 42", "DEF_CONST", ptr("answer 42"), 11},
		{"COMPARE_OP not in", "COMPARE_OP", ptr("not in"), 12},
		{"RAW b'\\x01'", "RAW", ptr("b'\\x01'"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			line, ok := ParseLine(3, tt.raw)
			require.True(t, ok)
			require.Equal(t, 3, line.Number)
			require.Equal(t, tt.op, line.Operation)
			require.Equal(t, tt.arg, line.Argument)
			require.Equal(t, tt.column, line.ArgColumn)
			require.Equal(t, strings.TrimSpace(tt.raw), line.Text)
			if tt.arg != nil {
				require.Equal(t, *tt.arg, line.Text[line.ArgColumn-1:])
			}
		})
	}
}

func TestParseLineSkips(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t", "; comment", "   ;indented comment", ";"} {
		_, ok := ParseLine(1, raw)
		require.False(t, ok, "%q", raw)
	}
}

func TestRead(t *testing.T) {
	src := `; hello world
DEF_NAME print
DEF_CONST msg 'hello'

LOAD_GLOBAL print
LOAD_CONST msg
CALL_FUNCTION 1
POP_TOP
`
	lines, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, lines, 6)
	require.Equal(t, 2, lines[0].Number)
	require.Equal(t, "DEF_NAME", lines[0].Operation)
	require.Equal(t, "print", lines[0].Arg())
	require.Equal(t, 5, lines[2].Number)
	require.Equal(t, "POP_TOP", lines[5].Operation)
	require.False(t, lines[5].HasArgument())
	require.Equal(t, "", lines[5].Arg())
	require.Equal(t, "CALL_FUNCTION 1", lines[4].String())
}

func TestReadEmpty(t *testing.T) {
	for _, src := range []string{"", "\n\n", "; only\n  ; comments\n"} {
		lines, err := Read(strings.NewReader(src))
		require.NoError(t, err)
		require.Empty(t, lines)
	}
}

func TestReadCRLF(t *testing.T) {
	lines := Parse("NOP\r\nLOAD_FAST x\r\n")
	require.Len(t, lines, 2)
	require.Equal(t, "x", lines[1].Arg())
}

func TestReadLineTooLong(t *testing.T) {
	_, err := Read(strings.NewReader("RAW " + strings.Repeat("x", maxLineSize+1)))
	require.Error(t, err)
}

func ptr(s string) *string {
	return &s
}
