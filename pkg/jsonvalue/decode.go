package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxDepth bounds nesting while decoding and converting values.
const MaxDepth = 1000

// ParseJSON decodes exactly one JSON document, preserving object key order
// and number literals. Trailing non-whitespace data is rejected.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, "$", 0)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, malformed("$", "empty JSON document", nil)
		}
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, malformed("$", "trailing data after JSON document", err)
	}
	return v, nil
}

// UnmarshalJSON implements json.Unmarshaler with order preservation.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func parseValue(dec *json.Decoder, path string, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, err
		}
		return Value{}, malformed(path, "invalid JSON", err)
	}
	return parseToken(dec, tok, path, depth)
}

func parseToken(dec *json.Decoder, tok json.Token, path string, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, malformed(path, fmt.Sprintf("nesting deeper than %d levels", MaxDepth), nil)
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			var fields []Field
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, malformed(path, "invalid object key", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, malformed(path, fmt.Sprintf("unexpected object key %v", keyTok), nil)
				}
				child, err := parseValue(dec, path+"."+key, depth+1)
				if err != nil {
					return Value{}, unexpectedEOF(path, err)
				}
				fields = append(fields, Field{Key: key, Value: child})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, malformed(path, "unterminated object", err)
			}
			return Object(fields...), nil
		case '[':
			var items []Value
			for dec.More() {
				child, err := parseValue(dec, path+"["+strconv.Itoa(len(items))+"]", depth+1)
				if err != nil {
					return Value{}, unexpectedEOF(path, err)
				}
				items = append(items, child)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, malformed(path, "unterminated array", err)
			}
			return Array(items...), nil
		}
	}
	return Value{}, malformed(path, fmt.Sprintf("unexpected token %v", tok), nil)
}

func unexpectedEOF(path string, err error) error {
	if errors.Is(err, io.EOF) {
		return malformed(path, "unexpected end of JSON input", nil)
	}
	return err
}
