package props

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
	KindList
)

// Value is the tagged scalar a property may hold in the raw data: string,
// bool, int, list of strings or null. Whatever shape it has, it always
// serializes back to a primitive form, so the raw data stays representable in
// every config format.
type Value struct {
	kind Kind
	b    bool
	i    int
	s    string
	list []string
}

func Null() Value            { return Value{kind: KindNull} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(i int) Value        { return Value{kind: KindInt, i: i} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func List(l ...string) Value { return Value{kind: KindList, list: l} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the canonical on-disk encoding: "yes"/"no" for booleans,
// "-" for null, space-joined items for lists.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "-"
	case KindBool:
		if v.b {
			return "yes"
		}
		return "no"
	case KindInt:
		return strconv.Itoa(v.i)
	case KindList:
		return strings.Join(v.list, " ")
	}
	return v.s
}

// AsList interprets the value as a list of strings. Scalar strings are split
// on whitespace, matching the legacy space-joined encoding.
func (v Value) AsList() []string {
	switch v.kind {
	case KindNull:
		return nil
	case KindList:
		return v.list
	case KindString:
		return strings.Fields(v.s)
	}
	return []string{v.String()}
}

// AsInt parses the value as an integer.
func (v Value) AsInt() (int, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindString:
		return strconv.Atoi(v.s)
	}
	return 0, fmt.Errorf("not an integer: %q", v.String())
}

// AsBool parses the value as a boolean, accepting the canonical truthy and
// falsy encodings.
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt:
		switch v.i {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case KindString:
		switch strings.ToLower(v.s) {
		case "yes", "true", "on", "1":
			return true, nil
		case "no", "false", "off", "0":
			return false, nil
		}
	}
	return false, fmt.Errorf("not a boolean: %q", v.String())
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindList:
		return json.Marshal(v.list)
	}
	return json.Marshal(v.s)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseUserInput(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseUserInput normalizes arbitrary user or file input into a Value. The
// canonical boolean encodings ("yes"/"no", "on"/"off", "true"/"false") become
// booleans, "none", "-" and the empty string become null, everything else
// keeps its shape.
func ParseUserInput(input any) (Value, error) {
	switch data := input.(type) {
	case nil:
		return Null(), nil
	case Value:
		return data, nil
	case bool:
		return Bool(data), nil
	case int:
		return Int(data), nil
	case int64:
		return Int(int(data)), nil
	case float64:
		if data != math.Trunc(data) {
			return Value{}, fmt.Errorf("unsupported fractional value %v", data)
		}
		return Int(int(data)), nil
	case []string:
		return List(data...), nil
	case []any:
		items := make([]string, len(data))
		for i, item := range data {
			parsed, err := ParseUserInput(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = parsed.String()
		}
		return List(items...), nil
	case string:
		switch strings.ToLower(data) {
		case "yes", "true", "on":
			return Bool(true), nil
		case "no", "false", "off":
			return Bool(false), nil
		case "none", "-", "":
			return Null(), nil
		}
		return String(data), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", input)
}
