package literal

import (
	"math"
	"testing"

	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/stretchr/testify/require"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"42", int64(42)},
		{"  42  ", int64(42)},
		{"-7", int64(-7)},
		{"+7", int64(7)},
		{"0", int64(0)},
		{"000", int64(0)},
		{"1_000_000", int64(1000000)},
		{"0x1F", int64(31)},
		{"0XfF", int64(255)},
		{"0x_ff", int64(255)},
		{"0o17", int64(15)},
		{"0b1010", int64(10)},
		{"-0x10", int64(-16)},
		{"3.5", 3.5},
		{".5", 0.5},
		{"1e3", 1000.0},
		{"2.5E-1", 0.25},
		{"-1.5", -1.5},
		{"'hi'", "hi"},
		{`"hi"`, "hi"},
		{`"it's"`, "it's"},
		{`'a\nb'`, "a\nb"},
		{`'\x41é'`, "Aé"},
		{`'\101'`, "A"},
		{`"\\"`, `\`},
		{`r'a\nb'`, `a\nb`},
		{"'héllo'", "héllo"},
		{"b'abc'", []byte("abc")},
		{`b'\x00\xff'`, []byte{0, 255}},
		{`B"\n"`, []byte{'\n'}},
		{`rb'\x00'`, []byte(`\x00`)},
		{"True", true},
		{"False", false},
		{"None", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseSequences(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"()", Tuple{}},
		{"[]", List{}},
		{"(1)", int64(1)},
		{"(1,)", Tuple{int64(1)}},
		{"(1, 2)", Tuple{int64(1), int64(2)}},
		{"1, 2", Tuple{int64(1), int64(2)}},
		{"1,", Tuple{int64(1)}},
		{"[1, 'a', None]", List{int64(1), "a", nil}},
		{"[1, 2,]", List{int64(1), int64(2)}},
		{"[(1, 2), [3]]", List{Tuple{int64(1), int64(2)}, List{int64(3)}}},
		{"( 'x' , b'y' )", Tuple{"x", []byte("y")}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		code  errors.ErrorCode
	}{
		{"", errors.E1001},
		{"   ", errors.E1001},
		{"foo", errors.E1001},
		{"true", errors.E1001},
		{"1 2", errors.E1001},
		{"[1, 2", errors.E1001},
		{"(1 2)", errors.E1001},
		{"[,]", errors.E1001},
		{"-", errors.E1001},
		{"__import__('os')", errors.E1001},
		{"'abc", errors.E1002},
		{`"abc'`, errors.E1002},
		{`'abc\`, errors.E1002},
		{"0x", errors.E1003},
		{"0xZZ", errors.E1003},
		{"012", errors.E1003},
		{"1__0", errors.E1003},
		{"10_", errors.E1003},
		{"99999999999999999999", errors.E1003},
		{"1.2.3", errors.E1003},
		{"12abc", errors.E1003},
		{`'\q'`, errors.E1004},
		{`'\xZZ'`, errors.E1004},
		{`'\x4'`, errors.E1004},
		{`b'\u0041'`, errors.E1004},
		{"b'é'", errors.E1001},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			require.ErrorIs(t, err, errors.ErrInvalidLiteral)
			var litErr *errors.LiteralError
			require.ErrorAs(t, err, &litErr)
			require.Equal(t, tt.code, litErr.Code)
			require.Equal(t, tt.input, litErr.Text)
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := ""
	for i := 0; i < maxDepth+1; i++ {
		deep += "["
	}
	_, err := Parse(deep)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nested too deeply")
}

func TestErrorOffset(t *testing.T) {
	_, err := Parse("[1, foo]")
	var litErr *errors.LiteralError
	require.ErrorAs(t, err, &litErr)
	require.Equal(t, 4, litErr.Offset)
}

func TestRepr(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{nil, "None"},
		{int64(-3), "-3"},
		{1.0, "1.0"},
		{0.25, "0.25"},
		{1e21, "1e+21"},
		{math.Inf(1), "inf"},
		{"hi", "'hi'"},
		{"it's", `"it's"`},
		{"a\nb", `'a\nb'`},
		{[]byte{'a', 0}, `b'a\x00'`},
		{true, "True"},
		{false, "False"},
		{Tuple{}, "()"},
		{Tuple{int64(1)}, "(1,)"},
		{Tuple{int64(1), "x"}, "(1, 'x')"},
		{List{int64(1), List{}}, "[1, []]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, Repr(tt.value))
		})
	}
}

func TestReprRoundTrip(t *testing.T) {
	inputs := []string{
		"42", "-1", "2.5", "'quote\\'s'", `"both ' and \""`, "b'\\x00\\xff\\n'",
		"True", "None", "(1,)", "[1, (2, 3), b'x', 'y']",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v, err := Parse(input)
			require.NoError(t, err)
			again, err := Parse(Repr(v))
			require.NoError(t, err)
			require.True(t, Equal(v, again), "%s != %s", Repr(v), Repr(again))
		})
	}
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(int64(1), int64(1)))
	require.False(t, Equal(int64(1), 1.0))
	require.False(t, Equal(true, int64(1)))
	require.True(t, Equal(nil, nil))
	require.False(t, Equal(nil, int64(0)))
	require.True(t, Equal([]byte{}, []byte(nil)))
	require.True(t, Equal(Tuple{int64(1)}, Tuple{int64(1)}))
	require.False(t, Equal(Tuple{int64(1)}, List{int64(1)}))
	require.False(t, Equal(List{int64(1)}, List{int64(1), int64(2)}))
	require.True(t, Equal(math.NaN(), math.NaN()))
}

func TestTypeName(t *testing.T) {
	require.Equal(t, "int", TypeName(int64(1)))
	require.Equal(t, "float", TypeName(1.5))
	require.Equal(t, "str", TypeName(""))
	require.Equal(t, "bytes", TypeName([]byte{}))
	require.Equal(t, "bool", TypeName(true))
	require.Equal(t, "none", TypeName(nil))
	require.Equal(t, "tuple", TypeName(Tuple{}))
	require.Equal(t, "list", TypeName(List{}))
}

func TestInt(t *testing.T) {
	v, err := Int("0x1_00")
	require.NoError(t, err)
	require.Equal(t, int64(256), v)

	_, err = Int("'a'")
	require.ErrorIs(t, err, errors.ErrInvalidLiteral)

	_, err = Int("1.5")
	require.Error(t, err)
}

func TestBytes(t *testing.T) {
	tests := []struct {
		input string
		want  []byte
	}{
		{"b'\\x01\\x02'", []byte{1, 2}},
		{"[100, 0, 0]", []byte{100, 0, 0}},
		{"(83,)", []byte{83}},
		{"[]", []byte{}},
		{"b''", []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Bytes(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"'str'", "42", "[256]", "[-1]", "[1, 'a']", "[1"} {
		t.Run(bad, func(t *testing.T) {
			_, err := Bytes(bad)
			require.Error(t, err)
		})
	}
}
