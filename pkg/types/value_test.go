package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a    Value
		b    Value
		want bool
	}{
		{name: "null equals null", a: Null(), b: Null(), want: true},
		{name: "zero value is null", a: Value{}, b: Null(), want: true},
		{name: "bool equal", a: Bool(true), b: Bool(true), want: true},
		{name: "bool unequal", a: Bool(true), b: Bool(false), want: false},
		{name: "number equal", a: Number(1), b: Number(1), want: true},
		{name: "number unequal", a: Number(1), b: Number(2), want: false},
		{name: "nan equals nan", a: Number(math.NaN()), b: Number(math.NaN()), want: true},
		{name: "text equal", a: Text("x"), b: Text("x"), want: true},
		{name: "text unequal", a: Text("x"), b: Text("y"), want: false},
		{
			name: "no coercion between number and text",
			a:    Number(1),
			b:    Text("1"),
			want: false,
		},
		{
			name: "no coercion between null and empty text",
			a:    Null(),
			b:    Text(""),
			want: false,
		},
		{
			name: "no coercion between bool and number",
			a:    Bool(true),
			b:    Number(1),
			want: false,
		},
		{
			name: "structured equal regardless of construction order",
			a:    Object(map[string]Value{"a": Number(1), "b": Text("x")}),
			b:    Object(map[string]Value{"b": Text("x"), "a": Number(1)}),
			want: true,
		},
		{
			name: "structured unequal on nested field",
			a:    Object(map[string]Value{"a": Array([]Value{Number(1)})}),
			b:    Object(map[string]Value{"a": Array([]Value{Number(2)})}),
			want: false,
		},
		{
			name: "array order matters",
			a:    Array([]Value{Number(1), Number(2)}),
			b:    Array([]Value{Number(2), Number(1)}),
			want: false,
		},
		{
			name: "empty object is not empty array",
			a:    Object(nil),
			b:    Array(nil),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a), "Equal must be symmetric")
		})
	}
}

func TestValueCanonicalKeyOrder(t *testing.T) {
	// Two documents with the same fields in different insertion order must
	// serialize identically, so field order never causes a spurious diff.
	a := MustFromAny(map[string]any{"z": 1.0, "a": map[string]any{"k": "v", "b": true}})
	b := Object(map[string]Value{
		"a": Object(map[string]Value{"b": Bool(true), "k": Text("v")}),
		"z": Number(1),
	})

	aj, err := json.Marshal(a)
	require.NoError(t, err)
	bj, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(aj), string(bj))
	assert.JSONEq(t, `{"a":{"b":true,"k":"v"},"z":1}`, string(aj))
}

func TestValueJSONRoundTrip(t *testing.T) {
	orig := Object(map[string]Value{
		"id":     Number(7),
		"name":   Text("widget"),
		"active": Bool(true),
		"tags":   Array([]Value{Text("a"), Text("b")}),
		"note":   Null(),
	})

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, orig.Equal(back), "round trip must preserve structural equality")
	assert.Equal(t, KindStructured, back.Kind())
}

func TestFromAnyRejectsUnsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = FromAny(map[string]any{"ok": true, "bad": make(chan int)})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "hello", Text("hello").String())
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "3.5", Number(3.5).String())
	assert.Equal(t, `["x"]`, Array([]Value{Text("x")}).String())
}
