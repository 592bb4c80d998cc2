package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ValueKind identifies which variant of the Value union is populated.
type ValueKind int

// Value kinds. Comparison never coerces across kinds: the number 1 and the
// text "1" are distinct values.
const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindText
	KindStructured
)

// String returns the kind name for error messages and logs.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindStructured:
		return "structured"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value errors.
var (
	ErrUnsupportedValue = errors.New("unsupported value type")
)

// Value is a tagged union over the cell types a result set can hold:
// null, boolean, number, text, and structured (nested maps and arrays of
// Value, as produced by JSON columns or document stores). Values are
// immutable by convention; all operations that combine Values build new ones.
//
// Equality is deep and structural. Structured values compare by canonical
// (key-sorted) serialization so that field order inside a document never
// causes a spurious difference.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
	obj  map[string]Value
	arr  []Value
	// isArr distinguishes an empty array from an empty object when both
	// backing slices/maps are nil.
	isArr bool
}

// Null returns the null Value. The zero Value is also null.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// Text returns a text Value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Object returns a structured Value backed by the given fields.
// The map is used as-is; callers must not mutate it afterwards.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindStructured, obj: fields}
}

// Array returns a structured Value backed by the given elements.
// The slice is used as-is; callers must not mutate it afterwards.
func Array(elems []Value) Value {
	return Value{kind: KindStructured, arr: elems, isArr: true}
}

// FromAny converts a decoded JSON value (nil, bool, float64, string,
// json.Number, int variants, map[string]any, []any) into a Value.
// Returns ErrUnsupportedValue for anything else.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return Number(f), nil
	case string:
		return Text(x), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			fields[k] = ev
		}
		return Object(fields), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return Array(elems), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// MustFromAny is FromAny for statically known inputs; panics on error.
// Intended for tests and literals.
func MustFromAny(v any) Value {
	val, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return val
}

// Kind returns the populated variant of the union.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload; valid only when Kind is KindBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric payload; valid only when Kind is KindNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsText returns the text payload; valid only when Kind is KindText.
func (v Value) AsText() string { return v.s }

// Equal reports deep structural equality. Values of different kinds are
// never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	case KindText:
		return v.s == o.s
	case KindStructured:
		return bytes.Equal(v.canonical(), o.canonical())
	default:
		return false
	}
}

// canonical returns the canonical (key-sorted) JSON encoding of the value.
// Two structurally equal values always produce the same bytes.
func (v Value) canonical() []byte {
	var buf bytes.Buffer
	v.writeCanonical(&buf)
	return buf.Bytes()
}

func (v Value) writeCanonical(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		b, _ := json.Marshal(v.n)
		buf.Write(b)
	case KindText:
		b, _ := json.Marshal(v.s)
		buf.Write(b)
	case KindStructured:
		if v.isArr {
			buf.WriteByte('[')
			for i, e := range v.arr {
				if i > 0 {
					buf.WriteByte(',')
				}
				e.writeCanonical(buf)
			}
			buf.WriteByte(']')
			return
		}
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			v.obj[k].writeCanonical(buf)
		}
		buf.WriteByte('}')
	}
}

// MarshalJSON encodes the value as plain JSON. Structured values are
// encoded with sorted keys, so the JSON form doubles as the canonical
// serialization used for comparison and fingerprints.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.canonical(), nil
}

// UnmarshalJSON decodes plain JSON into the matching Value kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// String renders the value for human-readable CLI output. Text is returned
// bare; everything else uses the canonical JSON form.
func (v Value) String() string {
	if v.kind == KindText {
		return v.s
	}
	return string(v.canonical())
}
