package world

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FlagKind tags the concrete type held by a FlagValue.
type FlagKind int

const (
	FlagNull FlagKind = iota
	FlagBool
	FlagInt
	FlagString
	FlagList
)

// FlagValue is a tagged variant for the open flags map: null, bool, int,
// string or list-of-string. Flags carry no schema; consumers validate the
// shape they expect at the point of read.
type FlagValue struct {
	Kind FlagKind
	Bool bool
	Int  int
	Str  string
	List []string
}

func NullFlag() FlagValue           { return FlagValue{Kind: FlagNull} }
func BoolFlag(b bool) FlagValue     { return FlagValue{Kind: FlagBool, Bool: b} }
func IntFlag(n int) FlagValue       { return FlagValue{Kind: FlagInt, Int: n} }
func StringFlag(s string) FlagValue { return FlagValue{Kind: FlagString, Str: s} }
func ListFlag(l []string) FlagValue { return FlagValue{Kind: FlagList, List: l} }

// Equal compares two flag values by value.
func (v FlagValue) Equal(o FlagValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case FlagNull:
		return true
	case FlagBool:
		return v.Bool == o.Bool
	case FlagInt:
		return v.Int == o.Int
	case FlagString:
		return v.Str == o.Str
	case FlagList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Matches is the comparison used by requirement evaluation. It is Equal,
// except that an unset flag (null) and an explicit false are interchangeable,
// since absent flags compare as their declared default.
func (v FlagValue) Matches(required FlagValue) bool {
	if v.Equal(required) {
		return true
	}
	vFalse := v.Kind == FlagNull || (v.Kind == FlagBool && !v.Bool)
	rFalse := required.Kind == FlagNull || (required.Kind == FlagBool && !required.Bool)
	return vFalse && rFalse
}

func (v FlagValue) String() string {
	switch v.Kind {
	case FlagNull:
		return "null"
	case FlagBool:
		return fmt.Sprintf("%t", v.Bool)
	case FlagInt:
		return fmt.Sprintf("%d", v.Int)
	case FlagString:
		return v.Str
	case FlagList:
		return fmt.Sprintf("%v", v.List)
	}
	return "?"
}

// MarshalJSON emits the natural JSON form of the value.
func (v FlagValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FlagNull:
		return []byte("null"), nil
	case FlagBool:
		return json.Marshal(v.Bool)
	case FlagInt:
		return json.Marshal(v.Int)
	case FlagString:
		return json.Marshal(v.Str)
	case FlagList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return nil, fmt.Errorf("unknown flag kind %d", v.Kind)
}

// UnmarshalJSON accepts null, booleans, integers, strings and string lists.
func (v *FlagValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return v.fromAny(raw)
}

func (v *FlagValue) fromAny(raw any) error {
	switch t := raw.(type) {
	case nil:
		*v = NullFlag()
	case bool:
		*v = BoolFlag(t)
	case float64:
		if t != float64(int(t)) {
			return fmt.Errorf("flag values must be integers, got %v", t)
		}
		*v = IntFlag(int(t))
	case int:
		*v = IntFlag(t)
	case string:
		*v = StringFlag(t)
	case []any:
		list := make([]string, 0, len(t))
		for _, el := range t {
			s, ok := el.(string)
			if !ok {
				return fmt.Errorf("flag lists must contain only strings, got %T", el)
			}
			list = append(list, s)
		}
		*v = ListFlag(list)
	default:
		return fmt.Errorf("unsupported flag value type %T", raw)
	}
	return nil
}

// UnmarshalYAML lets flag values appear directly in authored content files.
func (v *FlagValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return v.fromAny(raw)
}

// MarshalYAML emits the natural YAML form of the value.
func (v FlagValue) MarshalYAML() (any, error) {
	switch v.Kind {
	case FlagNull:
		return nil, nil
	case FlagBool:
		return v.Bool, nil
	case FlagInt:
		return v.Int, nil
	case FlagString:
		return v.Str, nil
	case FlagList:
		return v.List, nil
	}
	return nil, fmt.Errorf("unknown flag kind %d", v.Kind)
}
