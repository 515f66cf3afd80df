package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/literal"
	"github.com/deepnoodle-ai/snakebyte/op"
	"github.com/deepnoodle-ai/snakebyte/source"
)

func assemble(t *testing.T, cfg *Config, src string) (*Compiler, error) {
	t.Helper()
	c := New(cfg)
	for _, line := range source.Parse(src) {
		if err := c.EmitLine(line); err != nil {
			return c, err
		}
	}
	return c, nil
}

func build(t *testing.T, src string) []byte {
	t.Helper()
	c, err := assemble(t, nil, src)
	require.NoError(t, err)
	unit, err := c.Build()
	require.NoError(t, err)
	return unit.Code()
}

func ptr(s string) *string {
	return &s
}

func TestLoadConstScenario(t *testing.T) {
	c, err := assemble(t, nil, `
DEF_CONST answer 42
LOAD_CONST answer
RETURN_VALUE
`)
	require.NoError(t, err)
	unit, err := c.Build()
	require.NoError(t, err)
	require.Equal(t, []byte{100, 0, 0, 83}, unit.Code())
	require.Equal(t, 1, unit.ConstantCount())
	require.Equal(t, int64(42), unit.ConstantAt(0))
	require.Equal(t, 0, unit.NameCount())
	require.Equal(t, 0, unit.VarNameCount())
	require.Equal(t, 3, unit.StackSize())
	require.Equal(t, 0, unit.Flags())
	require.Equal(t, "hi", unit.UnitName())
	require.Equal(t, "hi", unit.SourceName())
}

func TestForwardJump(t *testing.T) {
	code := build(t, `
JUMP_FORWARD end
NOP
DEF_LABEL end
RETURN_VALUE
`)
	require.Equal(t, []byte{110, 4, 0, 9, 83}, code)
}

func TestBackwardJump(t *testing.T) {
	code := build(t, `
NOP
DEF_LABEL top
NOP
JUMP_ABSOLUTE top
`)
	require.Equal(t, []byte{9, 9, 113, 1, 0}, code)
}

func TestJumpLowByteFirst(t *testing.T) {
	var src strings.Builder
	src.WriteString("JUMP_ABSOLUTE far\n")
	for i := 0; i < 0x0102-3; i++ {
		src.WriteString("NOP\n")
	}
	src.WriteString("DEF_LABEL far\n")
	code := build(t, src.String())
	require.Equal(t, byte(0x02), code[1])
	require.Equal(t, byte(0x01), code[2])
}

func TestAllJumpKinds(t *testing.T) {
	for _, name := range []string{
		"FOR_ITER", "JUMP_FORWARD", "JUMP_IF_FALSE_OR_POP", "JUMP_IF_TRUE_OR_POP",
		"JUMP_ABSOLUTE", "POP_JUMP_IF_FALSE", "POP_JUMP_IF_TRUE", "CONTINUE_LOOP",
		"SETUP_LOOP",
	} {
		t.Run(name, func(t *testing.T) {
			code := build(t, "NOP\nNOP\nDEF_LABEL here\n"+name+" here")
			info, ok := op.Default().Lookup(name)
			require.True(t, ok)
			require.Equal(t, []byte{9, 9, byte(info.Code), 2, 0}, code)
		})
	}
}

func TestSymbolicOperands(t *testing.T) {
	c, err := assemble(t, nil, `
DEF_NAME print
DEF_NAME os
DEF_VAR x
DEF_CONST greeting 'hello'
LOAD_GLOBAL print
IMPORT_NAME os
LOAD_CONST greeting
STORE_FAST x
LOAD_FAST x
COMPARE_OP not in
CALL_FUNCTION 1
`)
	require.NoError(t, err)
	unit, err := c.Build()
	require.NoError(t, err)
	require.Equal(t, []byte{
		116, 0, 0,
		108, 1, 0,
		100, 0, 0,
		125, 0, 0,
		124, 0, 0,
		107, 7, 0,
		131, 1, 0,
	}, unit.Code())
	require.Equal(t, []string{"print", "os"}, unit.Names())
	require.Equal(t, []string{"x"}, unit.VarNames())
	require.Equal(t, "hello", unit.ConstantAt(0))
}

func TestCompareOps(t *testing.T) {
	for i, token := range op.CompareOps {
		t.Run(token, func(t *testing.T) {
			code := build(t, "COMPARE_OP "+token)
			require.Equal(t, []byte{107, byte(i), 0}, code)
		})
	}
}

func TestDirectivesEmitNothing(t *testing.T) {
	code := build(t, `
DEF_NAME a
DEF_VAR b
DEF_CONST c None
DEF_LABEL d
`)
	require.Empty(t, code)
}

func TestInterningIsIdempotent(t *testing.T) {
	c, err := assemble(t, nil, `
DEF_NAME a
DEF_NAME b
DEF_NAME a
DEF_VAR a
LOAD_GLOBAL b
LOAD_FAST a
`)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, c.Names().Names())
	require.Equal(t, []string{"a"}, c.VarNames().Names())
	require.Equal(t, []byte{116, 1, 0, 124, 0, 0}, c.Code())
}

func TestSymbolsAreTrimmed(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Emit("DEF_VAR", ptr("  x\t")))
	require.NoError(t, c.Emit("LOAD_FAST", ptr(" x ")))
	require.NoError(t, c.Emit("DEF_LABEL", ptr(" end ")))
	require.NoError(t, c.Emit("JUMP_ABSOLUTE", ptr("end  ")))
	unit, err := c.Build()
	require.NoError(t, err)
	require.Equal(t, []byte{124, 0, 0, 113, 3, 0}, unit.Code())
}

func TestUndefinedSymbolAppendsNothing(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"global", "LOAD_GLOBAL missing"},
		{"attr", "LOAD_ATTR missing"},
		{"import", "IMPORT_FROM missing"},
		{"const", "LOAD_CONST missing"},
		{"fast", "LOAD_FAST missing"},
		{"store fast", "STORE_FAST missing"},
		{"comparator", "COMPARE_OP <>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := assemble(t, nil, "NOP\n"+tt.src)
			require.Error(t, err)
			require.Equal(t, []byte{9}, c.Code())
			require.Equal(t, 1, c.Offset())
		})
	}
}

func TestUndefinedSymbolError(t *testing.T) {
	_, err := assemble(t, &Config{Filename: "hello.sb"}, "DEF_NAME print\nLOAD_GLOBAL prnt")
	require.ErrorIs(t, err, errors.ErrUndefinedSymbol)

	var asmErr *errors.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	require.Equal(t, errors.E2002, asmErr.Code)
	require.Equal(t, "hello.sb", asmErr.Filename)
	require.Equal(t, 2, asmErr.Line)
	require.Equal(t, 13, asmErr.Column)
	require.Equal(t, "LOAD_GLOBAL prnt", asmErr.SourceLine)
	require.Equal(t, "print", asmErr.Suggestions[0].Value)
	require.Equal(t, "assembly error: undefined name \"prnt\"\n\nlocation: hello.sb:2:13 (line 2, column 13)", err.Error())
}

func TestUnknownComparator(t *testing.T) {
	_, err := assemble(t, nil, "COMPARE_OP =<")
	require.ErrorIs(t, err, errors.ErrUnknownComparator)
}

func TestUndefinedLabels(t *testing.T) {
	c, err := assemble(t, &Config{Filename: "loop.sb"}, `
DEF_LABEL start
JUMP_ABSOLUTE strat
POP_JUMP_IF_FALSE done
JUMP_ABSOLUTE start
`)
	require.NoError(t, err)
	unit, err := c.Build()
	require.Nil(t, unit)
	require.ErrorIs(t, err, errors.ErrUndefinedLabel)

	formatted := errors.Flatten(err)
	require.Len(t, formatted, 2)
	require.Equal(t, `undefined label "strat"`, formatted[0].Message)
	require.Equal(t, 3, formatted[0].Line)
	require.Equal(t, "did you mean 'start'?", formatted[0].Hint)
	require.Equal(t, `undefined label "done"`, formatted[1].Message)
	require.Equal(t, 4, formatted[1].Line)

	// The defined label was still patched.
	require.Equal(t, []byte{113, 0, 0, 114, 0, 0, 113, 0, 0}, c.Code())
	require.Len(t, c.PendingJumps(), 2)
}

func TestBuildIsIdempotent(t *testing.T) {
	c, err := assemble(t, nil, "JUMP_FORWARD end\nDEF_LABEL end")
	require.NoError(t, err)
	require.Len(t, c.PendingJumps(), 1)
	require.Equal(t, 1, c.PendingJumps()[0].Site)
	require.Equal(t, "end", c.PendingJumps()[0].Label)

	first, err := c.Build()
	require.NoError(t, err)
	require.Empty(t, c.PendingJumps())
	second, err := c.Build()
	require.NoError(t, err)
	require.Equal(t, first.Code(), second.Code())
	require.Equal(t, first.ID(), second.ID())
}

func TestDuplicateLabel(t *testing.T) {
	_, err := assemble(t, nil, "DEF_LABEL a\nNOP\nDEF_LABEL a")
	require.ErrorIs(t, err, errors.ErrDuplicateLabel)
	var asmErr *errors.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	require.Equal(t, 3, asmErr.Line)
}

func TestLabelRedefinitionAllowed(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c, err := assemble(t, &Config{AllowLabelRedefinition: true, Logger: &logger}, `
JUMP_ABSOLUTE a
DEF_LABEL a
NOP
DEF_LABEL a
`)
	require.NoError(t, err)
	unit, err := c.Build()
	require.NoError(t, err)
	require.Equal(t, []byte{113, 4, 0, 9}, unit.Code())
	require.Contains(t, buf.String(), "label redefined")
}

func TestFixedOperands(t *testing.T) {
	tests := []struct {
		src  string
		want []byte
	}{
		{"BUILD_TUPLE 2", []byte{102, 2, 0}},
		{"BUILD_LIST 0x102", []byte{103, 2, 1}},
		{"CALL_FUNCTION 0b11", []byte{131, 3, 0}},
		{"STORE_NAME 1_000", []byte{90, 0xe8, 0x03}},
		{"UNPACK_SEQUENCE 65535", []byte{92, 0xff, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, tt.want, build(t, tt.src))
		})
	}
}

func TestInvalidFixedOperand(t *testing.T) {
	for _, src := range []string{"BUILD_TUPLE abc", "BUILD_TUPLE 1.5", "BUILD_TUPLE 'x'"} {
		t.Run(src, func(t *testing.T) {
			c, err := assemble(t, nil, src)
			require.ErrorIs(t, err, errors.ErrInvalidOperand)
			require.Empty(t, c.Code())
		})
	}
}

func TestOperandOverflowMasked(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.WarnLevel)
	cfg := DefaultConfig()
	cfg.Logger = &logger
	c, err := assemble(t, &cfg, "BUILD_TUPLE 70000")
	require.NoError(t, err)
	require.Equal(t, []byte{102, 0x70, 0x11}, c.Code())
	require.Contains(t, buf.String(), "operand overflows 16 bits and was masked")
	require.Contains(t, buf.String(), `"level":"warn"`)
}

func TestOperandOverflowStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictOperands = true
	c, err := assemble(t, &cfg, "NOP\nBUILD_TUPLE 70000")
	require.ErrorIs(t, err, errors.ErrOperandOverflow)
	require.Equal(t, []byte{9}, c.Code())

	_, err = assemble(t, &cfg, "BUILD_TUPLE -1")
	require.ErrorIs(t, err, errors.ErrOperandOverflow)
}

func TestArgumentRules(t *testing.T) {
	c := New(nil)
	err := c.Emit("RETURN_VALUE", ptr("1"))
	require.ErrorIs(t, err, errors.ErrUnexpectedArgument)

	for _, name := range []string{"LOAD_CONST", "JUMP_FORWARD", "BUILD_TUPLE", "COMPARE_OP", "DEF_LABEL", "DEF_CONST", "RAW"} {
		err = c.Emit(name, nil)
		require.ErrorIs(t, err, errors.ErrMissingArgument, name)
		err = c.Emit(name, ptr("   "))
		require.ErrorIs(t, err, errors.ErrMissingArgument, name)
	}
	require.Empty(t, c.Code())
}

func TestUnknownOperation(t *testing.T) {
	_, err := assemble(t, nil, "LOAD_GLOBL x")
	require.ErrorIs(t, err, errors.ErrUnknownOperation)
	var asmErr *errors.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	require.Equal(t, "LOAD_GLOBAL", asmErr.Suggestions[0].Value)
	require.Equal(t, 1, asmErr.Column)
	require.Equal(t, 10, asmErr.EndColumn)

	_, err = assemble(t, nil, "DEF_LABLE x")
	require.ErrorAs(t, err, &asmErr)
	require.Equal(t, "DEF_LABEL", asmErr.Suggestions[0].Value)

	// Operation names are case sensitive.
	_, err = assemble(t, nil, "nop")
	require.ErrorIs(t, err, errors.ErrUnknownOperation)
}

func TestDirectiveSuggestions(t *testing.T) {
	require.ElementsMatch(t, []string{DefLabel, DefName, DefVar, DefConst, Raw}, directiveNames())

	_, err := assemble(t, nil, "DEF_CONS x 1")
	var asmErr *errors.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	require.Equal(t, errors.E2001, asmErr.Code)
	require.Equal(t, "DEF_CONST", asmErr.Suggestions[0].Value)
}

func TestDefConst(t *testing.T) {
	c, err := assemble(t, nil, `
DEF_CONST i -3
DEF_CONST f 2.5
DEF_CONST s "two words"
DEF_CONST b b'\x00'
DEF_CONST t (1, 'a')
DEF_CONST l [True, None]
DEF_CONST i -3
`)
	require.NoError(t, err)
	require.Equal(t, []literal.Value{
		int64(-3),
		2.5,
		"two words",
		[]byte{0},
		literal.Tuple{int64(1), "a"},
		literal.List{true, nil},
	}, c.Constants().Values())
}

func TestDefConstErrors(t *testing.T) {
	_, err := assemble(t, nil, "DEF_CONST lonely")
	require.ErrorIs(t, err, errors.ErrMissingArgument)

	_, err = assemble(t, nil, "DEF_CONST s 'abc")
	require.ErrorIs(t, err, errors.ErrInvalidLiteral)
	var asmErr *errors.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	require.Equal(t, errors.E1002, asmErr.Code)
	require.Equal(t, 13, asmErr.Column)
	require.Contains(t, asmErr.Message, "unterminated string")

	_, err = assemble(t, nil, "DEF_CONST x __import__('os')")
	require.ErrorIs(t, err, errors.ErrInvalidLiteral)

	_, err = assemble(t, nil, "DEF_CONST x 1\nDEF_CONST x 2")
	require.ErrorIs(t, err, errors.ErrConstantRedefined)
	require.ErrorAs(t, err, &asmErr)
	require.Equal(t, 2, asmErr.Line)
}

func TestRaw(t *testing.T) {
	code := build(t, `
RAW b'\x64\x00\x00'
RAW [83]
RAW (9, 9)
`)
	require.Equal(t, []byte{100, 0, 0, 83, 9, 9}, code)
}

func TestRawErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c, err := assemble(t, &Config{Logger: &logger}, "RAW 'text'")
	require.ErrorIs(t, err, errors.ErrInvalidOperand)
	require.Contains(t, err.Error(), "'text'")
	require.Contains(t, buf.String(), "failed to evaluate RAW bytes")
	require.Empty(t, c.Code())

	_, err = assemble(t, nil, "RAW [256]")
	require.ErrorIs(t, err, errors.ErrInvalidOperand)

	_, err = assemble(t, nil, "RAW b'\\q'")
	require.ErrorIs(t, err, errors.ErrInvalidLiteral)
}

func TestEmptySource(t *testing.T) {
	for _, src := range []string{"", "\n\n  \n", "; nothing\n;here"} {
		c, err := assemble(t, nil, src)
		require.NoError(t, err)
		unit, err := c.Build()
		require.NoError(t, err)
		require.True(t, unit.IsEmpty())
		require.Equal(t, 0, unit.CodeLen())
	}
}

func TestDeterminism(t *testing.T) {
	src := `
DEF_NAME print
DEF_CONST msg 'hello'
DEF_LABEL top
LOAD_GLOBAL print
LOAD_CONST msg
CALL_FUNCTION 1
POP_TOP
JUMP_ABSOLUTE top
`
	a, err := assemble(t, nil, src)
	require.NoError(t, err)
	b, err := assemble(t, nil, src)
	require.NoError(t, err)
	ua, err := a.Build()
	require.NoError(t, err)
	ub, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, ua.Code(), ub.Code())
	require.Equal(t, ua.Names(), ub.Names())
	require.Equal(t, ua.ID(), ub.ID())
}

func TestMetadataConfig(t *testing.T) {
	cfg := &Config{StackSize: 10, Flags: 64, UnitName: "main", SourceName: "main.sb", Filename: "/src/main.sb"}
	c, err := assemble(t, cfg, "NOP")
	require.NoError(t, err)
	unit, err := c.Build()
	require.NoError(t, err)
	require.Equal(t, 10, unit.StackSize())
	require.Equal(t, 64, unit.Flags())
	require.Equal(t, "main", unit.UnitName())
	require.Equal(t, "main.sb", unit.SourceName())
	require.Equal(t, "/src/main.sb", unit.Filename())
}

func TestCustomTable(t *testing.T) {
	table, err := op.NewTable("custom/1", 10, []op.Code{20}, []op.Def{
		{Code: 1, Name: "HALT"},
		{Code: 11, Name: "PUSH"},
		{Code: 20, Name: "GOTO"},
		{Code: 12, Name: "GET", Kind: op.NameRef},
	})
	require.NoError(t, err)
	c, err := assemble(t, &Config{Table: table}, `
DEF_NAME x
DEF_LABEL top
PUSH 7
GET x
GOTO top
HALT
`)
	require.NoError(t, err)
	unit, err := c.Build()
	require.NoError(t, err)
	require.Equal(t, []byte{11, 7, 0, 12, 0, 0, 20, 0, 0, 1}, unit.Code())
	require.Equal(t, "custom/1", unit.OpVersion())

	_, err = assemble(t, &Config{Table: table}, "NOP")
	require.ErrorIs(t, err, errors.ErrUnknownOperation)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	c, err := assemble(t, &Config{Logger: &logger}, "DEF_LABEL a\nJUMP_ABSOLUTE a")
	require.NoError(t, err)
	_, err = c.Build()
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, `"message":"define label"`)
	require.Contains(t, out, `"message":"emit jump"`)
	require.Contains(t, out, `"message":"patch jump"`)
	require.Contains(t, out, `"message":"built unit"`)
}
