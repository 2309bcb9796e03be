package jsonvalue

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// FromAny converts an arbitrary Go value (typically the output of a generic
// decoder such as map[string]any / []any trees, or user structs) into a
// Value. The whole input is checked before anything is returned: cyclic
// references and values with no JSON representation (funcs, channels,
// complex numbers, NaN/Inf) are rejected with ErrMalformedInput.
//
// Go maps carry no order, so map keys are emitted sorted. Structs go through
// encoding/json and keep their declaration order.
func FromAny(x any) (Value, error) {
	c := converter{onPath: make(map[visit]bool)}
	return c.convert(reflect.ValueOf(x), "$", 0)
}

// MustFromAny is FromAny for tests and literals known to be well formed.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

type visit struct {
	ptr uintptr
	len int
	typ reflect.Type
}

type converter struct {
	onPath map[visit]bool
}

var (
	valueType         = reflect.TypeOf(Value{})
	numberType        = reflect.TypeOf(json.Number(""))
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

func (c *converter) convert(rv reflect.Value, path string, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, malformed(path, fmt.Sprintf("nesting deeper than %d levels", MaxDepth), nil)
	}
	if !rv.IsValid() {
		return Null(), nil
	}

	switch rv.Type() {
	case valueType:
		return rv.Interface().(Value), nil //nolint:forcetypeassert // guarded by the type switch
	case numberType:
		lit := rv.String()
		if _, err := strconv.ParseFloat(lit, 64); err != nil {
			return Value{}, malformed(path, fmt.Sprintf("invalid number literal %q", lit), err)
		}
		return Number(lit), nil
	}

	switch rv.Kind() { //nolint:exhaustive // remaining kinds are rejected below
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, malformed(path, "non-finite number", nil)
		}
		return Float(f), nil
	case reflect.String:
		return String(rv.String()), nil

	case reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.convert(rv.Elem(), path, depth)

	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		key := visit{ptr: rv.Pointer(), typ: rv.Type()}
		if c.onPath[key] {
			return Value{}, malformed(path, "cyclic reference", nil)
		}
		c.onPath[key] = true
		defer delete(c.onPath, key)
		return c.convert(rv.Elem(), path, depth+1)

	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		key := visit{ptr: rv.Pointer(), typ: rv.Type()}
		if c.onPath[key] {
			return Value{}, malformed(path, "cyclic reference", nil)
		}
		c.onPath[key] = true
		defer delete(c.onPath, key)
		return c.convertMap(rv, path, depth)

	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return String(base64.StdEncoding.EncodeToString(rv.Bytes())), nil
		}
		key := visit{ptr: rv.Pointer(), len: rv.Len(), typ: rv.Type()}
		if c.onPath[key] {
			return Value{}, malformed(path, "cyclic reference", nil)
		}
		c.onPath[key] = true
		defer delete(c.onPath, key)
		return c.convertList(rv, path, depth)

	case reflect.Array:
		return c.convertList(rv, path, depth)

	case reflect.Struct:
		return c.convertStruct(rv, path)

	default:
		return Value{}, malformed(path, fmt.Sprintf("unsupported type %s", rv.Type()), nil)
	}
}

func (c *converter) convertMap(rv reflect.Value, path string, depth int) (Value, error) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := mapKeyString(iter.Key())
		if err != nil {
			return Value{}, malformed(path, err.Error(), nil)
		}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	fields := make([]Field, 0, len(entries))
	for _, e := range entries {
		child, err := c.convert(e.val, path+"."+e.key, depth+1)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, Field{Key: e.key, Value: child})
	}
	return Object(fields...), nil
}

func (c *converter) convertList(rv reflect.Value, path string, depth int) (Value, error) {
	items := make([]Value, rv.Len())
	for i := range items {
		child, err := c.convert(rv.Index(i), path+"["+strconv.Itoa(i)+"]", depth+1)
		if err != nil {
			return Value{}, err
		}
		items[i] = child
	}
	return Array(items...), nil
}

// convertStruct defers to encoding/json so struct tags are honoured, then
// re-parses the output in order. encoding/json reports pointer cycles and
// unsupported field types itself.
func (c *converter) convertStruct(rv reflect.Value, path string) (Value, error) {
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return Value{}, malformed(path, fmt.Sprintf("cannot marshal %s", rv.Type()), err)
	}
	v, err := ParseJSON(data)
	if err != nil {
		return Value{}, malformed(path, fmt.Sprintf("cannot re-read %s", rv.Type()), err)
	}
	return v, nil
}

func mapKeyString(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if k.Type().Implements(textMarshalerType) {
		tm, _ := k.Interface().(encoding.TextMarshaler)
		b, err := tm.MarshalText()
		if err != nil {
			return "", fmt.Errorf("map key %v: %w", k.Interface(), err)
		}
		return string(b), nil
	}
	switch k.Kind() { //nolint:exhaustive // only integer keys have a JSON spelling
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Interface:
		if !k.IsNil() {
			return mapKeyString(k.Elem())
		}
	}
	return "", fmt.Errorf("unsupported map key type %s", k.Type())
}
