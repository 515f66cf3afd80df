package bytecode

import (
	"encoding/json"
	"testing"

	"github.com/deepnoodle-ai/snakebyte/literal"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal(t *testing.T) {
	u := NewUnit(UnitParams{
		Code: []byte{100, 0, 0, 100, 1, 0, 83},
		Constants: []literal.Value{
			int64(-5),
			2.5,
			"hello",
			[]byte{0, 255},
			true,
			nil,
			literal.Tuple{int64(1), "a"},
			literal.List{literal.Tuple{}, []byte("x")},
		},
		Names:      []string{"print", "len"},
		VarNames:   []string{"i"},
		StackSize:  8,
		Flags:      64,
		UnitName:   "main",
		SourceName: "main.sb",
		Filename:   "/tmp/main.sb",
	})

	data, err := Marshal(u)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, u.ID(), restored.ID())
	require.Equal(t, u.Code(), restored.Code())
	require.Equal(t, u.Names(), restored.Names())
	require.Equal(t, u.VarNames(), restored.VarNames())
	require.Equal(t, u.StackSize(), restored.StackSize())
	require.Equal(t, u.Flags(), restored.Flags())
	require.Equal(t, u.UnitName(), restored.UnitName())
	require.Equal(t, u.SourceName(), restored.SourceName())
	require.Equal(t, u.Filename(), restored.Filename())
	require.Equal(t, u.ConstantCount(), restored.ConstantCount())
	for i := 0; i < u.ConstantCount(); i++ {
		require.True(t, literal.Equal(u.ConstantAt(i), restored.ConstantAt(i)), "constant %d", i)
	}
}

func TestMarshalFormat(t *testing.T) {
	u := NewUnit(UnitParams{
		Code:      []byte{100, 0, 0, 83},
		Constants: []literal.Value{int64(42)},
	})
	data, err := MarshalIndent(u)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, float64(FormatVersion), raw["version"])
	require.Equal(t, "ZAAAUw==", raw["code"])
	require.Equal(t, []any{map[string]any{"type": "int", "value": float64(42)}}, raw["constants"])
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		msg  string
	}{
		{"bad json", `{`, "unexpected end of JSON input"},
		{"bad version", `{"version": 9}`, "unsupported unit format version: 9"},
		{"bad code", `{"version": 1, "code": "!!"}`, "invalid code"},
		{"bad constant", `{"version": 1, "constants": [{"type": "function"}]}`, "unknown constant type: function"},
		{"id mismatch", `{"version": 1, "id": "nope"}`, "unit id mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestMarshalUnknownConstant(t *testing.T) {
	u := NewUnit(UnitParams{ID: "x", Constants: []literal.Value{struct{}{}}})
	_, err := Marshal(u)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown constant type")
}
