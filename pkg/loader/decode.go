package loader

import (
	"strings"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

const maxDecodeDepth = 20

// TryDecode parses s as a serialized document (JWT, JSON, YAML, TOML,
// NDJSON). It succeeds only when the result is an object or array; plain
// words and numbers stay strings.
func TryDecode(s string) (jsonvalue.Value, bool) {
	if strings.TrimSpace(s) == "" {
		return jsonvalue.Value{}, false
	}
	v, err := LoadRoot(s)
	if err != nil || v.IsScalar() {
		return jsonvalue.Value{}, false
	}
	return v, true
}

// RecursiveDecode replaces every string in v that holds a serialized
// document with the decoded structure, recursively, so JSON embedded in a
// YAML field (or a JWT inside a JSON payload) renders as a tree.
func RecursiveDecode(v jsonvalue.Value) jsonvalue.Value {
	return recursiveDecode(v, 0)
}

func recursiveDecode(v jsonvalue.Value, depth int) jsonvalue.Value {
	if depth > maxDecodeDepth {
		return v
	}
	switch v.Kind() {
	case jsonvalue.KindObject:
		fields := make([]jsonvalue.Field, len(v.Fields()))
		for i, f := range v.Fields() {
			fields[i] = jsonvalue.F(f.Key, recursiveDecode(f.Value, depth+1))
		}
		return jsonvalue.Object(fields...)
	case jsonvalue.KindArray:
		items := make([]jsonvalue.Value, len(v.Items()))
		for i, item := range v.Items() {
			items[i] = recursiveDecode(item, depth+1)
		}
		return jsonvalue.Array(items...)
	case jsonvalue.KindString:
		if decoded, ok := TryDecode(v.Str()); ok {
			return recursiveDecode(decoded, depth+1)
		}
		return v
	default:
		return v
	}
}
