package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(LoadConst)
	require.Equal(t, "LOAD_CONST", info.Name)
	require.Equal(t, ConstRef, info.Kind)
	require.Equal(t, LoadConst, info.Code)
	require.Equal(t, 3, info.Size())
}

func TestDefaultClassification(t *testing.T) {
	tests := []struct {
		name string
		code Code
		kind Kind
	}{
		{"POP_TOP", PopTop, None},
		{"NOP", Nop, None},
		{"BINARY_ADD", BinaryAdd, None},
		{"RETURN_VALUE", ReturnValue, None},
		{"POP_BLOCK", PopBlock, None},
		{"STORE_NAME", StoreName, Fixed16},
		{"BUILD_TUPLE", BuildTuple, Fixed16},
		{"CALL_FUNCTION", CallFunction, Fixed16},
		{"LOAD_NAME", LoadName, Fixed16},
		{"JUMP_FORWARD", JumpForward, JumpAbs},
		{"JUMP_ABSOLUTE", JumpAbsolute, JumpAbs},
		{"POP_JUMP_IF_FALSE", PopJumpIfFalse, JumpAbs},
		{"POP_JUMP_IF_TRUE", PopJumpIfTrue, JumpAbs},
		{"FOR_ITER", ForIter, JumpAbs},
		{"SETUP_LOOP", SetupLoop, JumpAbs},
		{"LOAD_GLOBAL", LoadGlobal, NameRef},
		{"LOAD_ATTR", LoadAttr, NameRef},
		{"IMPORT_NAME", ImportName, NameRef},
		{"IMPORT_FROM", ImportFrom, NameRef},
		{"LOAD_CONST", LoadConst, ConstRef},
		{"LOAD_FAST", LoadFast, VarRef},
		{"STORE_FAST", StoreFast, VarRef},
		{"COMPARE_OP", CompareOp, CompareOpRef},
	}
	table := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := table.Lookup(tt.name)
			require.True(t, ok)
			require.Equal(t, tt.code, info.Code)
			require.Equal(t, tt.kind, info.Kind)
			require.Equal(t, info, table.Get(tt.code))
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Default().Lookup("NOT_AN_OP")
	require.False(t, ok)
	require.False(t, GetInfo(Invalid).IsValid())
	require.Equal(t, 1, GetInfo(Invalid).Size())
}

func TestNamesSorted(t *testing.T) {
	names := Default().Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		require.Less(t, names[i-1], names[i])
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable("test", 90, nil, []Def{
		{Code: 1, Name: "A"},
		{Code: 1, Name: "B"},
	})
	require.Error(t, err)

	_, err = NewTable("test", 90, nil, []Def{
		{Code: 1, Name: "A"},
		{Code: 2, Name: "A"},
	})
	require.Error(t, err)

	_, err = NewTable("test", 90, nil, []Def{{Code: 1}})
	require.Error(t, err)
}

func TestNewTableThreshold(t *testing.T) {
	table, err := NewTable("test", 10, []Code{12}, []Def{
		{Code: 9, Name: "BELOW"},
		{Code: 10, Name: "AT"},
		{Code: 11, Name: "ABOVE"},
		{Code: 12, Name: "JUMP"},
		{Code: 3, Name: "REF", Kind: NameRef},
	})
	require.NoError(t, err)
	require.Equal(t, "test", table.Version())
	require.Equal(t, Code(10), table.HaveArgument())
	require.True(t, table.IsJump(12))

	kinds := map[string]Kind{
		"BELOW": None,
		"AT":    Fixed16,
		"ABOVE": Fixed16,
		"JUMP":  JumpAbs,
		"REF":   NameRef,
	}
	for name, want := range kinds {
		info, ok := table.Lookup(name)
		require.True(t, ok, name)
		require.Equal(t, want, info.Kind, name)
	}
}

func TestCompareOps(t *testing.T) {
	tests := []struct {
		token string
		want  CompareOpType
	}{
		{"<", LessThan},
		{"<=", LessThanOrEqual},
		{"==", Equal},
		{"!=", NotEqual},
		{">", GreaterThan},
		{">=", GreaterThanOrEqual},
		{"in", In},
		{"not in", NotIn},
		{"is", Is},
		{"is not", IsNot},
		{"exception match", ExceptionMatch},
		{"BAD", Bad},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := LookupCompareOp(tt.token)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.token, got.String())
		})
	}
	_, ok := LookupCompareOp("<>")
	require.False(t, ok)
	require.Equal(t, "", CompareOpType(200).String())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "none", None.String())
	require.Equal(t, "fixed16", Fixed16.String())
	require.Equal(t, "jump", JumpAbs.String())
	require.Equal(t, "name", NameRef.String())
	require.Equal(t, "const", ConstRef.String())
	require.Equal(t, "var", VarRef.String())
	require.Equal(t, "compare", CompareOpRef.String())
	require.Equal(t, "unknown", Kind(99).String())
	require.True(t, VarRef.IsSymbolic())
	require.False(t, JumpAbs.IsSymbolic())
	require.False(t, None.HasOperand())
}
