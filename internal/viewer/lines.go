package viewer

import (
	"strings"

	"github.com/oakwood-commons/kvtree/internal/formatter"
	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/render"
)

// Line is one row of the interactive view.
type Line struct {
	Depth int
	Text  string
	// Key addresses the expandable cell when Toggle is set. The root cell's
	// key is empty.
	Key      pathkey.Key
	Toggle   bool
	Expanded bool
	// Heading marks card titles and record row labels.
	Heading bool
}

// Toggleable reports whether selecting the line flips an expandable cell.
func (l Line) Toggleable() bool { return l.Toggle }

// Lines flattens a presentation tree into indented lines, one per scalar,
// cell or heading. arrayStyle labels record rows as in tree output.
func Lines(n render.Node, arrayStyle string) []Line {
	var out []Line
	appendNode(&out, "", n, 0, arrayStyle)
	return out
}

func appendNode(out *[]Line, label string, n render.Node, depth int, arrayStyle string) {
	switch v := n.(type) {
	case *render.ScalarCell:
		appendText(out, label, v.Text, depth)
	case *render.ExpandableCell:
		if !v.Expanded {
			*out = append(*out, Line{Depth: depth, Text: labelled(label, formatter.CollapsedMarker+" "+firstLine(v.Summary)), Key: v.Key, Toggle: true})
			return
		}
		*out = append(*out, Line{Depth: depth, Text: labelled(label, formatter.ExpandedMarker), Key: v.Key, Toggle: true, Expanded: true})
		for _, c := range v.Children {
			appendNode(out, "", c, depth+1, arrayStyle)
		}
	case *render.Table:
		if label != "" {
			*out = append(*out, Line{Depth: depth, Text: label, Heading: true})
			depth++
		}
		if v.IsKeyValue() {
			for _, row := range v.Rows {
				appendNode(out, row.Label, row.Cells[0], depth, arrayStyle)
			}
			return
		}
		for i, row := range v.Rows {
			name := formatter.FormatArrayIndex(i, arrayStyle)
			if name == "" {
				name = "(item)"
			}
			*out = append(*out, Line{Depth: depth, Text: name, Heading: true})
			for j, col := range v.Columns {
				if s, ok := row.Cells[j].(*render.ScalarCell); ok && s.Text == "" && !s.Marker {
					continue
				}
				appendNode(out, col.Label, row.Cells[j], depth+1, arrayStyle)
			}
		}
	case *render.Card:
		title := label
		if title == "" {
			title = v.Title
		}
		if title != "" {
			*out = append(*out, Line{Depth: depth, Text: title, Heading: true})
			depth++
		}
		for _, c := range v.Children {
			if child, ok := c.(*render.Card); ok && child.Title != "" && len(child.Children) == 1 {
				if _, scalar := child.Children[0].(*render.ScalarCell); scalar {
					appendNode(out, child.Title, child.Children[0], depth, arrayStyle)
					continue
				}
				if _, cell := child.Children[0].(*render.ExpandableCell); cell {
					appendNode(out, child.Title, child.Children[0], depth, arrayStyle)
					continue
				}
			}
			appendNode(out, "", c, depth, arrayStyle)
		}
	}
}

// appendText adds a scalar. Continuation lines of multi-line text are
// indented under the first.
func appendText(out *[]Line, label, text string, depth int) {
	parts := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	*out = append(*out, Line{Depth: depth, Text: labelled(label, parts[0])})
	for _, p := range parts[1:] {
		*out = append(*out, Line{Depth: depth + 1, Text: p})
	}
}

func labelled(label, value string) string {
	if label == "" {
		return value
	}
	return label + ": " + value
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + render.Ellipsis
	}
	return s
}
