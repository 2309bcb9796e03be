package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MarshalJSON writes v as compact JSON, keeping object field order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.Bytes(), nil
}

// Compact returns the compact JSON serialization of v.
func (v Value) Compact() string {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.String()
}

// Indented returns the JSON serialization of v indented with two spaces,
// the same layout a browser produces for JSON.stringify(v, null, 2).
func (v Value) Indented() string {
	var compact bytes.Buffer
	v.writeJSON(&compact)
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return compact.String()
	}
	return out.String()
}

func (v Value) writeJSON(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		writeJSONString(buf, v.text)
	case KindObject:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, f.Key)
			buf.WriteByte(':')
			f.Value.writeJSON(buf)
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeJSON(buf)
		}
		buf.WriteByte(']')
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		buf.WriteString(strconv.Quote(s))
		return
	}
	// Encode appends a newline.
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// ToAny converts v into plain Go values (map[string]any, []any, string,
// bool, int64, float64, nil). Object order is lost.
func (v Value) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if i, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v.text, 64); err == nil {
			return f
		}
		return v.text
	case KindString:
		return v.text
	case KindObject:
		m := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			m[f.Key] = f.Value.ToAny()
		}
		return m
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.ToAny()
		}
		return out
	default:
		return nil
	}
}
