package props

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserInput(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{name: "nil", input: nil, want: Null()},
		{name: "bool", input: true, want: Bool(true)},
		{name: "int", input: 42, want: Int(42)},
		{name: "int64", input: int64(7), want: Int(7)},
		{name: "integral float", input: float64(3), want: Int(3)},
		{name: "plain string", input: "hello", want: String("hello")},
		{name: "yes", input: "yes", want: Bool(true)},
		{name: "on", input: "on", want: Bool(true)},
		{name: "true", input: "true", want: Bool(true)},
		{name: "no", input: "no", want: Bool(false)},
		{name: "off", input: "off", want: Bool(false)},
		{name: "false", input: "false", want: Bool(false)},
		{name: "none", input: "none", want: Null()},
		{name: "dash", input: "-", want: Null()},
		{name: "empty string", input: "", want: Null()},
		{name: "string slice", input: []string{"a", "b"}, want: List("a", "b")},
		{name: "any slice", input: []any{"a", "b"}, want: List("a", "b")},
		{name: "value passthrough", input: Int(1), want: Int(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUserInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUserInput_unsupported(t *testing.T) {
	_, err := ParseUserInput(struct{}{})
	require.Error(t, err)
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "null", v: Null(), want: "-"},
		{name: "true", v: Bool(true), want: "yes"},
		{name: "false", v: Bool(false), want: "no"},
		{name: "int", v: Int(80), want: "80"},
		{name: "string", v: String("web01"), want: "web01"},
		{name: "list", v: List("a", "b"), want: "a b"},
		{name: "empty list", v: List(), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValue_AsBool(t *testing.T) {
	tests := []struct {
		name    string
		v       Value
		want    bool
		wantErr bool
	}{
		{name: "bool", v: Bool(true), want: true},
		{name: "yes", v: String("yes"), want: true},
		{name: "on", v: String("on"), want: true},
		{name: "one", v: Int(1), want: true},
		{name: "zero", v: Int(0), want: false},
		{name: "off", v: String("off"), want: false},
		{name: "garbage", v: String("maybe"), wantErr: true},
		{name: "wide int", v: Int(2), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.AsBool()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_AsList(t *testing.T) {
	assert.Equal(t, []string{"em0", "em1"}, String("em0 em1").AsList())
	assert.Equal(t, []string{"em0"}, List("em0").AsList())
	assert.Empty(t, Null().AsList())
}

func TestValue_JSON(t *testing.T) {
	b, err := json.Marshal(map[string]Value{
		"boot": Bool(true),
		"id":   String("web01"),
	})
	require.NoError(t, err)

	var got map[string]Value
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, Bool(true), got["boot"])
	assert.Equal(t, String("web01"), got["id"])
}
