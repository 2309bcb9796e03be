package formatter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/kvtree/internal/render"
)

// DefaultMermaidDirection is the flowchart direction used when none is set.
const DefaultMermaidDirection = "TD"

// mermaidBuilder tracks state during diagram generation.
type mermaidBuilder struct {
	lines  []string
	nodeID int
	opts   Options
}

// FormatAsMermaid renders a presentation tree as a Mermaid flowchart. Cards
// and tables become nodes with edges to their rows, expandable cells show
// their marker and summary.
func FormatAsMermaid(n render.Node, opts Options) string {
	b := &mermaidBuilder{
		lines: []string{"graph " + DefaultMermaidDirection},
		opts:  opts,
	}
	rootID := b.nextID()
	b.addNode(rootID, "root", "")
	b.build(rootID, "", n, 0)
	return strings.Join(b.lines, "\n") + "\n"
}

// nextID generates a unique node identifier.
func (b *mermaidBuilder) nextID() string {
	id := fmt.Sprintf("n%d", b.nodeID)
	b.nodeID++
	return id
}

func (b *mermaidBuilder) addNode(id, label, value string) {
	b.lines = append(b.lines, fmt.Sprintf("    %s[%q]", id, escapeMermaidLabel(label, value)))
}

func (b *mermaidBuilder) addEdge(fromID, toID string) {
	b.lines = append(b.lines, fmt.Sprintf("    %s --> %s", fromID, toID))
}

// child adds a labelled node under parentID and returns its id.
func (b *mermaidBuilder) child(parentID, label, value string) string {
	id := b.nextID()
	b.addNode(id, label, value)
	b.addEdge(parentID, id)
	return id
}

func (b *mermaidBuilder) build(parentID, label string, n render.Node, depth int) {
	if b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth {
		b.child(parentID, label, render.Ellipsis)
		return
	}

	switch v := n.(type) {
	case *render.ScalarCell:
		b.child(parentID, label, v.Text)
	case *render.ExpandableCell:
		if !v.Expanded {
			b.child(parentID, label, withKey(CollapsedMarker+" "+v.Summary, v.Key, b.opts))
			return
		}
		id := b.child(parentID, label, withKey(ExpandedMarker, v.Key, b.opts))
		for _, c := range v.Children {
			b.build(id, "", c, depth+1)
		}
	case *render.Table:
		id := b.group(parentID, label)
		if v.IsKeyValue() {
			for _, row := range v.Rows {
				b.build(id, row.Label, row.Cells[0], depth+1)
			}
			return
		}
		for i, row := range v.Rows {
			rowID := b.child(id, orItem(FormatArrayIndex(i, b.opts.ArrayStyle)), "")
			for j, col := range v.Columns {
				if isAbsent(row.Cells[j]) {
					continue
				}
				b.build(rowID, col.Label, row.Cells[j], depth+2)
			}
		}
	case *render.Card:
		name := label
		if name == "" {
			name = v.Title
		}
		id := b.group(parentID, name)
		for _, c := range v.Children {
			if card, ok := c.(*render.Card); ok && card.Title != "" && len(card.Children) == 1 {
				b.build(id, card.Title, card.Children[0], depth+1)
				continue
			}
			b.build(id, "", c, depth+1)
		}
	}
}

// group returns the node that children of a container attach to: a new
// labelled node, or the parent itself for unlabelled containers.
func (b *mermaidBuilder) group(parentID, label string) string {
	if label == "" {
		return parentID
	}
	return b.child(parentID, label, "")
}

// escapeMermaidLabel creates a safe label for Mermaid nodes.
func escapeMermaidLabel(key, value string) string {
	var label string
	switch {
	case value == "":
		label = orItem(key)
	case key == "":
		label = value
	default:
		label = key + ": " + value
	}
	// Mermaid uses quotes, so escape internal quotes
	label = strings.ReplaceAll(label, `"`, `'`)
	label = strings.ReplaceAll(label, "\r", "")
	return strings.ReplaceAll(label, "\n", " ")
}
