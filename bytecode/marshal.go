package bytecode

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/deepnoodle-ai/snakebyte/literal"
)

// FormatVersion is the version of the serialized unit format.
const FormatVersion = 1

// Marshal converts a Unit into a JSON representation.
func Marshal(unit *Unit) ([]byte, error) {
	state, err := stateFromUnit(unit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(state)
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(unit *Unit) ([]byte, error) {
	state, err := stateFromUnit(unit)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(state, "", "  ")
}

// Unmarshal converts a JSON representation into a Unit. The stored ID must
// match the unit's content.
func Unmarshal(data []byte) (*Unit, error) {
	var state unitState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return unitFromState(&state)
}

// Serialization types

type constantDef struct {
	Type string `json:"type"`
}

type boolConstantDef struct {
	Type  string `json:"type"`
	Value bool   `json:"value"`
}

type intConstantDef struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

type floatConstantDef struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type stringConstantDef struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// bytesConstantDef stores bytes as standard base64.
type bytesConstantDef struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sequenceConstantDef struct {
	Type  string            `json:"type"`
	Items []json.RawMessage `json:"items"`
}

type unitState struct {
	Version    int               `json:"version"`
	ID         string            `json:"id"`
	OpVersion  string            `json:"op_version"`
	Code       string            `json:"code"`
	Constants  []json.RawMessage `json:"constants"`
	Names      []string          `json:"names"`
	VarNames   []string          `json:"varnames"`
	StackSize  int               `json:"stack_size"`
	Flags      int               `json:"flags"`
	UnitName   string            `json:"unit_name"`
	SourceName string            `json:"source_name"`
	Filename   string            `json:"filename,omitempty"`
}

func stateFromUnit(unit *Unit) (*unitState, error) {
	constants := make([]json.RawMessage, unit.ConstantCount())
	for i := 0; i < unit.ConstantCount(); i++ {
		data, err := marshalConstant(unit.constants[i])
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		constants[i] = data
	}
	return &unitState{
		Version:    FormatVersion,
		ID:         unit.ID(),
		OpVersion:  unit.OpVersion(),
		Code:       base64.StdEncoding.EncodeToString(unit.code),
		Constants:  constants,
		Names:      unit.Names(),
		VarNames:   unit.VarNames(),
		StackSize:  unit.StackSize(),
		Flags:      unit.Flags(),
		UnitName:   unit.UnitName(),
		SourceName: unit.SourceName(),
		Filename:   unit.Filename(),
	}, nil
}

func unitFromState(state *unitState) (*Unit, error) {
	if state.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported unit format version: %d", state.Version)
	}
	code, err := base64.StdEncoding.DecodeString(state.Code)
	if err != nil {
		return nil, fmt.Errorf("invalid code: %w", err)
	}
	constants := make([]literal.Value, len(state.Constants))
	for i, d := range state.Constants {
		c, err := unmarshalConstant(d)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		constants[i] = c
	}
	unit := NewUnit(UnitParams{
		Code:       code,
		Constants:  constants,
		Names:      state.Names,
		VarNames:   state.VarNames,
		StackSize:  state.StackSize,
		Flags:      state.Flags,
		UnitName:   state.UnitName,
		SourceName: state.SourceName,
		Filename:   state.Filename,
		OpVersion:  state.OpVersion,
	})
	if state.ID != "" && state.ID != unit.ID() {
		return nil, fmt.Errorf("unit id mismatch: stored %s, computed %s", state.ID, unit.ID())
	}
	return unit, nil
}

func marshalConstant(c literal.Value) (json.RawMessage, error) {
	switch v := c.(type) {
	case nil:
		return json.Marshal(constantDef{Type: "none"})
	case bool:
		return json.Marshal(boolConstantDef{Type: "bool", Value: v})
	case int64:
		return json.Marshal(intConstantDef{Type: "int", Value: v})
	case float64:
		return json.Marshal(floatConstantDef{Type: "float", Value: v})
	case string:
		return json.Marshal(stringConstantDef{Type: "str", Value: v})
	case []byte:
		return json.Marshal(bytesConstantDef{Type: "bytes", Value: base64.StdEncoding.EncodeToString(v)})
	case literal.Tuple:
		return marshalSequence("tuple", v)
	case literal.List:
		return marshalSequence("list", v)
	default:
		return nil, fmt.Errorf("unknown constant type: %T", c)
	}
}

func marshalSequence(typ string, items []literal.Value) (json.RawMessage, error) {
	def := sequenceConstantDef{Type: typ, Items: make([]json.RawMessage, len(items))}
	for i, item := range items {
		data, err := marshalConstant(item)
		if err != nil {
			return nil, err
		}
		def.Items[i] = data
	}
	return json.Marshal(def)
}

func unmarshalConstant(data json.RawMessage) (literal.Value, error) {
	var def constantDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}

	switch def.Type {
	case "none":
		return nil, nil
	case "bool":
		var d boolConstantDef
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d.Value, nil
	case "int":
		var d intConstantDef
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d.Value, nil
	case "float":
		var d floatConstantDef
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d.Value, nil
	case "str":
		var d stringConstantDef
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d.Value, nil
	case "bytes":
		var d bytesConstantDef
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(d.Value)
	case "tuple", "list":
		var d sequenceConstantDef
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		items := make([]literal.Value, len(d.Items))
		for i, item := range d.Items {
			v, err := unmarshalConstant(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		if def.Type == "tuple" {
			return literal.Tuple(items), nil
		}
		return literal.List(items), nil
	default:
		return nil, fmt.Errorf("unknown constant type: %s", def.Type)
	}
}
