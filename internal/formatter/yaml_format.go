package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvtree/internal/render"
)

const yamlIndent = 2

// FormatAsYAML returns the presentation tree as YAML. Field order follows
// the JSON encoding and multi-line text is written as literal blocks.
func FormatAsYAML(n render.Node) (string, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("encode presentation tree: %w", err)
	}
	// JSON is valid YAML; decoding into a node keeps key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("encode presentation tree: %w", err)
	}
	applyBlockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("encode presentation tree: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode presentation tree: %w", err)
	}
	return buf.String(), nil
}

// applyBlockStyle drops the flow style inherited from JSON and marks
// multi-line strings as literal blocks.
func applyBlockStyle(n *yaml.Node) {
	if n == nil {
		return
	}
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Style &^= yaml.DoubleQuotedStyle
		if strings.Contains(n.Value, "\n") {
			n.Style = yaml.LiteralStyle
		}
	}
	for _, c := range n.Content {
		applyBlockStyle(c)
	}
}
