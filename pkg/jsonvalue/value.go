// Package jsonvalue provides the ordered, immutable JSON-like value tree the
// presentation engine consumes. Objects keep their field insertion order and
// numbers keep their source literal, so a value renders exactly as it was
// written.
package jsonvalue

import (
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field is a single object member.
type Field struct {
	Key   string
	Value Value
}

// Value is a JSON-like value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	text   string // string contents or number literal
	fields []Field
	items  []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Int returns a number value holding i.
func Int(i int64) Value { return Value{kind: KindNumber, text: strconv.FormatInt(i, 10)} }

// Float returns a number value holding f in its shortest representation.
func Float(f float64) Value {
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Number returns a number value from a literal such as "30" or "1.50".
// The literal is kept verbatim; callers are expected to pass valid JSON
// number syntax.
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// Object returns an object with the given fields in order. Later duplicates
// of a key replace the earlier value but keep the earlier position.
func Object(fields ...Field) Value {
	out := make([]Field, 0, len(fields))
	seen := make(map[string]int, len(fields))
	for _, f := range fields {
		if i, ok := seen[f.Key]; ok {
			out[i].Value = f.Value
			continue
		}
		seen[f.Key] = len(out)
		out = append(out, f)
	}
	return Value{kind: KindObject, fields: out}
}

// Array returns an array of the given items.
func Array(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindArray, items: out}
}

// F is shorthand for constructing a Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsObject() bool { return v.kind == KindObject }
func (v Value) IsArray() bool  { return v.kind == KindArray }

// IsScalar reports whether v is neither an object nor an array.
func (v Value) IsScalar() bool { return v.kind != KindObject && v.kind != KindArray }

// BoolValue returns the boolean held by v (false for other kinds).
func (v Value) BoolValue() bool { return v.b }

// Str returns the string held by v, or "" for non-string values.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.text
}

// NumberLiteral returns the source literal of a number, or "" otherwise.
func (v Value) NumberLiteral() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.text
}

// Fields returns the object members in order. The returned slice must not
// be modified.
func (v Value) Fields() []Field { return v.fields }

// Items returns the array elements. The returned slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Len returns the number of fields or items, 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.fields)
	case KindArray:
		return len(v.items)
	default:
		return 0
	}
}

// Get returns the value of an object field.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the object keys in order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.fields))
	for i, f := range v.fields {
		keys[i] = f.Key
	}
	return keys
}

// Text returns the display form of a scalar: "null", "true"/"false", the
// number literal or the string itself. Composite values return their
// compact JSON serialization.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber, KindString:
		return v.text
	default:
		return v.Compact()
	}
}

// Equal reports deep equality, including object field order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber, KindString:
		return v.text == o.text
	case KindObject:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Key != o.fields[i].Key || !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// GoString renders a short debugging form.
func (v Value) GoString() string {
	var b strings.Builder
	b.WriteString("jsonvalue.")
	b.WriteString(v.kind.String())
	b.WriteString("(")
	b.WriteString(v.Compact())
	b.WriteString(")")
	return b.String()
}
