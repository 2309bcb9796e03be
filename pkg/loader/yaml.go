package loader

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// jsonNumber matches literals that are already valid JSON numbers and can be
// kept verbatim.
var jsonNumber = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

// FromYAMLNode converts a decoded YAML node into a value, keeping mapping
// order. Aliases are resolved and merge keys (<<) are applied.
func FromYAMLNode(n *yaml.Node) (jsonvalue.Value, error) {
	return yamlValue(n, "$", 0)
}

func yamlValue(n *yaml.Node, path string, depth int) (jsonvalue.Value, error) {
	if depth > jsonvalue.MaxDepth {
		return jsonvalue.Value{}, &jsonvalue.MalformedInputError{
			Path:   path,
			Reason: fmt.Sprintf("nesting deeper than %d levels", jsonvalue.MaxDepth),
		}
	}
	if n == nil {
		return jsonvalue.Null(), nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return jsonvalue.Null(), nil
		}
		return yamlValue(n.Content[0], path, depth)
	case yaml.AliasNode:
		return yamlValue(n.Alias, path, depth+1)
	case yaml.SequenceNode:
		items := make([]jsonvalue.Value, len(n.Content))
		for i, child := range n.Content {
			v, err := yamlValue(child, path+"["+strconv.Itoa(i)+"]", depth+1)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			items[i] = v
		}
		return jsonvalue.Array(items...), nil
	case yaml.MappingNode:
		fields, err := yamlFields(n, path, depth)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Object(fields...), nil
	case yaml.ScalarNode:
		return yamlScalar(n, path)
	}
	return jsonvalue.Value{}, &jsonvalue.MalformedInputError{Path: path, Reason: fmt.Sprintf("unsupported YAML node kind %d", n.Kind)}
}

func yamlFields(n *yaml.Node, path string, depth int) ([]jsonvalue.Field, error) {
	var fields []jsonvalue.Field
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.ShortTag() == "!!merge" {
			merged, err := yamlMerge(valNode, path, depth)
			if err != nil {
				return nil, err
			}
			fields = append(merged, fields...)
			continue
		}
		key := keyNode.Value
		if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
			key = keyNode.Alias.Value
		}
		v, err := yamlValue(valNode, path+"."+key, depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, jsonvalue.Field{Key: key, Value: v})
	}
	return fields, nil
}

// yamlMerge returns the fields contributed by a merge key, which may name a
// single mapping or a sequence of them.
func yamlMerge(n *yaml.Node, path string, depth int) ([]jsonvalue.Field, error) {
	v, err := yamlValue(n, path, depth+1)
	if err != nil {
		return nil, err
	}
	switch {
	case v.IsObject():
		return append([]jsonvalue.Field(nil), v.Fields()...), nil
	case v.IsArray():
		var out []jsonvalue.Field
		for _, item := range v.Items() {
			if !item.IsObject() {
				return nil, &jsonvalue.MalformedInputError{Path: path, Reason: "merge key must reference mappings"}
			}
			out = append(out, item.Fields()...)
		}
		return out, nil
	}
	return nil, &jsonvalue.MalformedInputError{Path: path, Reason: "merge key must reference a mapping"}
}

func yamlScalar(n *yaml.Node, path string) (jsonvalue.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return jsonvalue.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return jsonvalue.Value{}, &jsonvalue.MalformedInputError{Path: path, Reason: "invalid bool", Err: err}
		}
		return jsonvalue.Bool(b), nil
	case "!!int":
		if jsonNumber.MatchString(n.Value) {
			return jsonvalue.Number(n.Value), nil
		}
		var i int64
		if err := n.Decode(&i); err == nil {
			return jsonvalue.Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return jsonvalue.Number(strconv.FormatUint(u, 10)), nil
		}
		return jsonvalue.String(n.Value), nil
	case "!!float":
		if jsonNumber.MatchString(n.Value) {
			return jsonvalue.Number(n.Value), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return jsonvalue.Value{}, &jsonvalue.MalformedInputError{Path: path, Reason: "invalid float", Err: err}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return jsonvalue.Value{}, &jsonvalue.MalformedInputError{Path: path, Reason: "non-finite number"}
		}
		return jsonvalue.Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return jsonvalue.String(n.Value), nil
	}
}
