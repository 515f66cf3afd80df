package compiler

import (
	"github.com/deepnoodle-ai/snakebyte/errors"
	"github.com/deepnoodle-ai/snakebyte/literal"
)

// SymbolTable assigns dense indexes to names in first-seen order.
type SymbolTable struct {
	index map[string]int
	names []string
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: map[string]int{}}
}

// Intern returns the index of name, appending it if it is new.
func (t *SymbolTable) Intern(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	i := len(t.names)
	t.index[name] = i
	t.names = append(t.names, name)
	return i
}

// Lookup returns the index of name without interning it.
func (t *SymbolTable) Lookup(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Names returns a copy of the names in index order.
func (t *SymbolTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of interned names.
func (t *SymbolTable) Len() int {
	return len(t.names)
}

// ConstantTable is a SymbolTable whose entries carry evaluated values.
type ConstantTable struct {
	symbols *SymbolTable
	values  []literal.Value
}

// NewConstantTable returns an empty constant table.
func NewConstantTable() *ConstantTable {
	return &ConstantTable{symbols: NewSymbolTable()}
}

// Define binds name to value and returns its index. Defining an existing
// name again with an equal value returns the original index; a different
// value is an error.
func (t *ConstantTable) Define(name string, value literal.Value) (int, error) {
	if i, ok := t.symbols.Lookup(name); ok {
		if !literal.Equal(t.values[i], value) {
			return i, errors.Newf(errors.E2008,
				"constant %q redefined: was %s, now %s",
				name, literal.Repr(t.values[i]), literal.Repr(value))
		}
		return i, nil
	}
	i := t.symbols.Intern(name)
	t.values = append(t.values, value)
	return i, nil
}

// Lookup returns the index of a defined constant.
func (t *ConstantTable) Lookup(name string) (int, bool) {
	return t.symbols.Lookup(name)
}

// Value returns the value at index i.
func (t *ConstantTable) Value(i int) literal.Value {
	return t.values[i]
}

// Values returns the values in index order.
func (t *ConstantTable) Values() []literal.Value {
	out := make([]literal.Value, len(t.values))
	copy(out, t.values)
	return out
}

// Names returns the constant names in index order.
func (t *ConstantTable) Names() []string {
	return t.symbols.Names()
}

// Len returns the number of constants.
func (t *ConstantTable) Len() int {
	return len(t.values)
}

// LabelTable maps label names to byte offsets.
type LabelTable struct {
	offsets     map[string]int
	allowRedef  bool
	definitions []string
}

// NewLabelTable returns an empty label table. If allowRedefinition is
// true, defining a label twice moves it instead of failing.
func NewLabelTable(allowRedefinition bool) *LabelTable {
	return &LabelTable{offsets: map[string]int{}, allowRedef: allowRedefinition}
}

// Define binds name to offset. The returned bool reports whether an
// earlier definition was replaced.
func (t *LabelTable) Define(name string, offset int) (bool, error) {
	prev, exists := t.offsets[name]
	if exists && !t.allowRedef {
		return false, errors.Newf(errors.E2005,
			"label %q already defined at offset %d", name, prev)
	}
	if !exists {
		t.definitions = append(t.definitions, name)
	}
	t.offsets[name] = offset
	return exists, nil
}

// Offset returns the byte offset bound to name.
func (t *LabelTable) Offset(name string) (int, bool) {
	offset, ok := t.offsets[name]
	return offset, ok
}

// Names returns label names in order of first definition.
func (t *LabelTable) Names() []string {
	out := make([]string, len(t.definitions))
	copy(out, t.definitions)
	return out
}

// Len returns the number of labels.
func (t *LabelTable) Len() int {
	return len(t.definitions)
}
