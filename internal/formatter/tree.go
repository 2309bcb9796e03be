package formatter

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/kvtree/internal/render"
)

// ValidArrayStyles contains all valid array style values.
var ValidArrayStyles = []string{"index", "numbered", "bullet", "none"}

// ValidateArrayStyle returns an error if the style is invalid.
func ValidateArrayStyle(style string) error {
	if style == "" {
		return nil // empty means use default
	}
	for _, valid := range ValidArrayStyles {
		if style == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid array-style %q: valid values are index, numbered, bullet, none", style)
}

// FormatArrayIndex formats a record row index based on style.
func FormatArrayIndex(i int, style string) string {
	switch style {
	case "numbered":
		return fmt.Sprintf("%d", i+1)
	case "bullet":
		return "•"
	case "none":
		return ""
	default: // "index" or empty
		return fmt.Sprintf("[%d]", i)
	}
}

// formatKeyValue formats a label/value pair. An empty label returns just
// the value.
func formatKeyValue(label, value string) string {
	if label == "" {
		return value
	}
	return label + ": " + value
}

// FormatAsTree renders a presentation tree as an ASCII tree. Cards become
// branches named by their title, table rows become "label: value" leaves and
// record rows become indexed branches.
func FormatAsTree(n render.Node, opts Options) string {
	tree := treeprint.New()
	addTreeNode(tree, "", n, opts, 0)
	return tree.String()
}

func addTreeNode(branch treeprint.Tree, label string, n render.Node, opts Options, depth int) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		branch.AddNode(formatKeyValue(label, render.Ellipsis))
		return
	}

	switch v := n.(type) {
	case *render.ScalarCell:
		addTreeText(branch, label, v.Text)
	case *render.ExpandableCell:
		if !v.Expanded {
			summary := escapeScalarString(v.Summary)
			branch.AddNode(formatKeyValue(label, withKey(CollapsedMarker+" "+summary, v.Key, opts)))
			return
		}
		child := branch.AddBranch(formatKeyValue(label, withKey(ExpandedMarker, v.Key, opts)))
		for _, c := range v.Children {
			addTreeNode(child, "", c, opts, depth+1)
		}
	case *render.Table:
		target := subBranch(branch, label)
		if v.IsKeyValue() {
			for _, row := range v.Rows {
				addTreeNode(target, row.Label, row.Cells[0], opts, depth+1)
			}
			return
		}
		for i, row := range v.Rows {
			rb := target.AddBranch(orItem(FormatArrayIndex(i, opts.ArrayStyle)))
			for j, col := range v.Columns {
				if isAbsent(row.Cells[j]) {
					continue
				}
				addTreeNode(rb, col.Label, row.Cells[j], opts, depth+2)
			}
		}
	case *render.Card:
		name := label
		if name == "" {
			name = v.Title
		}
		target := subBranch(branch, name)
		for _, c := range v.Children {
			if child, ok := c.(*render.Card); ok && child.Title != "" && len(child.Children) == 1 {
				addTreeNode(target, child.Title, child.Children[0], opts, depth+1)
				continue
			}
			addTreeNode(target, "", c, opts, depth+1)
		}
	}
}

// addTreeText adds a scalar. Multi-line text becomes a branch with one node
// per line.
func addTreeText(branch treeprint.Tree, label, text string) {
	if !strings.ContainsAny(text, "\r\n") {
		branch.AddNode(formatKeyValue(label, text))
		return
	}
	target := subBranch(branch, label)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		target.AddNode(line)
	}
}

func subBranch(branch treeprint.Tree, name string) treeprint.Tree {
	if name == "" {
		return branch
	}
	return branch.AddBranch(name)
}

func orItem(label string) string {
	if label == "" {
		return "(item)"
	}
	return label
}

// isAbsent reports whether a record cell stands for a missing column.
func isAbsent(n render.Node) bool {
	s, ok := n.(*render.ScalarCell)
	return ok && s.Text == "" && !s.Marker
}
