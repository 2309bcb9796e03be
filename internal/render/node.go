package render

import (
	"encoding/json"

	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/shape"
)

// NodeKind tags the presentation node variants.
type NodeKind string

const (
	KindScalarCell     NodeKind = "scalar_cell"
	KindExpandableCell NodeKind = "expandable_cell"
	KindTable          NodeKind = "table"
	KindCard           NodeKind = "card"
)

// Node is one element of a presentation tree: *ScalarCell, *ExpandableCell,
// *Table or *Card. Trees are rebuilt on every render and never mutated
// afterwards.
type Node interface {
	Kind() NodeKind
}

// ScalarCell is a single line of text. Marker is set for the explicit
// placeholders "null", "[]" and "{}" so views can style them apart from
// real strings with the same spelling.
type ScalarCell struct {
	Text   string `json:"text"`
	Marker bool   `json:"marker,omitempty"`
}

// ExpandableCell is a node behind a toggle. Children is only populated when
// Expanded is true.
type ExpandableCell struct {
	Key      pathkey.Key `json:"key"`
	Summary  string      `json:"summary"`
	Expanded bool        `json:"expanded"`
	// Shape is the kind of value being gated (LongText or LeafRecord).
	Shape    shape.Kind `json:"shape"`
	Children []Node     `json:"children,omitempty"`
}

// Column is a header of a record table.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Row is a table row. Key/value tables have no Columns and exactly one cell
// per row, labelled by Label. Record tables have one cell per column.
type Row struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Cells []Node `json:"cells"`
}

// Table is either a key/value table (no Columns) or a record table.
type Table struct {
	Columns []Column `json:"columns,omitempty"`
	Rows    []Row    `json:"rows"`
}

// Card groups children under an optional title.
type Card struct {
	Key      string `json:"key,omitempty"`
	Title    string `json:"title,omitempty"`
	Children []Node `json:"children"`
}

func (*ScalarCell) Kind() NodeKind     { return KindScalarCell }
func (*ExpandableCell) Kind() NodeKind { return KindExpandableCell }
func (*Table) Kind() NodeKind          { return KindTable }
func (*Card) Kind() NodeKind           { return KindCard }

// IsKeyValue reports whether t is a key/value table.
func (t *Table) IsKeyValue() bool { return len(t.Columns) == 0 }

// MarshalJSON adds the "type" discriminator.
func (c *ScalarCell) MarshalJSON() ([]byte, error) {
	type plain ScalarCell
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		*plain
	}{KindScalarCell, (*plain)(c)})
}

// MarshalJSON adds the "type" discriminator.
func (c *ExpandableCell) MarshalJSON() ([]byte, error) {
	type plain ExpandableCell
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		*plain
	}{KindExpandableCell, (*plain)(c)})
}

// MarshalJSON adds the "type" discriminator.
func (t *Table) MarshalJSON() ([]byte, error) {
	type plain Table
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		*plain
	}{KindTable, (*plain)(t)})
}

// MarshalJSON adds the "type" discriminator.
func (c *Card) MarshalJSON() ([]byte, error) {
	type plain Card
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		*plain
	}{KindCard, (*plain)(c)})
}

// Walk calls fn for n and every descendant in depth-first order. Returning
// false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch t := n.(type) {
	case *ExpandableCell:
		for _, c := range t.Children {
			Walk(c, fn)
		}
	case *Table:
		for _, row := range t.Rows {
			for _, c := range row.Cells {
				Walk(c, fn)
			}
		}
	case *Card:
		for _, c := range t.Children {
			Walk(c, fn)
		}
	}
}
