package formatter

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/kvtree/internal/render"
)

// BreadcrumbSeparator joins section titles in table output.
const BreadcrumbSeparator = " › "

const (
	tableSepWidth  = 2
	minColWidth    = 3
	maxColWidth    = 40
	minValueWidth  = 20
	maxKeyColWidth = 30
)

// section is one titled block of table output.
type section struct {
	path []string
	node render.Node
}

// FormatAsTable renders a presentation tree as terminal tables. Cards become
// titled sections; nested tables inside cells are laid out as their own
// sections below the table that references them.
func FormatAsTable(n render.Node, opts Options) string {
	var sections []section
	flatten(nil, n, &sections)

	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(s.path) > 0 {
			b.WriteString(style(titleStyle, strings.Join(s.path, BreadcrumbSeparator), opts) + "\n")
		}
		b.WriteString(renderSection(s, opts))
	}
	return b.String()
}

// flatten splits n into sections. Cards contribute their titles to the path.
func flatten(path []string, n render.Node, out *[]section) {
	switch v := n.(type) {
	case *render.Card:
		if v.Title != "" {
			path = appendPath(path, v.Title)
		}
		for _, c := range v.Children {
			flatten(path, c, out)
		}
	default:
		*out = append(*out, section{path: path, node: n})
	}
}

func appendPath(path []string, title string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, title)
}

func renderSection(s section, opts Options) string {
	var b strings.Builder
	var nested []section

	switch v := s.node.(type) {
	case *render.Table:
		if v.IsKeyValue() {
			rows := make([][]string, 0, len(v.Rows))
			for _, row := range v.Rows {
				text, inner := cellText(row.Cells[0], opts, escapeScalarString)
				if inner != nil {
					nested = append(nested, section{path: appendPath(s.path, row.Label), node: inner})
				}
				rows = append(rows, []string{row.Label, text})
			}
			b.WriteString(RenderRows(rows, opts))
		} else {
			columns := make([]string, len(v.Columns))
			for i, c := range v.Columns {
				columns[i] = c.Label
			}
			rows := make([][]string, 0, len(v.Rows))
			for i, row := range v.Rows {
				values := make([]string, len(row.Cells))
				for j, cell := range row.Cells {
					text, inner := cellText(cell, opts, escapeScalarString)
					if inner != nil {
						title := FormatArrayIndex(i, "index") + " " + v.Columns[j].Label
						nested = append(nested, section{path: appendPath(s.path, title), node: inner})
						if text == "" {
							text = "→ " + title
						}
					}
					values[j] = text
				}
				rows = append(rows, values)
			}
			b.WriteString(RenderColumnarTable(columns, rows, opts))
		}
	case *render.ExpandableCell:
		text, inner := cellText(v, opts, escapeScalarString)
		b.WriteString(styleValue(text, opts) + "\n")
		if inner != nil {
			var sub []section
			flatten(s.path, inner, &sub)
			for _, child := range sub {
				b.WriteString(renderSection(child, opts))
			}
		}
	case *render.ScalarCell:
		b.WriteString(style(valueStyle, v.Text, opts) + "\n")
	}

	for _, ns := range nested {
		var sub []section
		flatten(ns.path, ns.node, &sub)
		for _, child := range sub {
			b.WriteString("\n")
			if len(child.path) > 0 {
				b.WriteString(style(titleStyle, strings.Join(child.path, BreadcrumbSeparator), opts) + "\n")
			}
			b.WriteString(renderSection(child, opts))
		}
	}
	return b.String()
}

// RenderRows renders label/value pairs as a KEY/VALUE table sized to its
// content and capped at the configured width.
func RenderRows(rows [][]string, opts Options) string {
	sep := strings.Repeat(" ", tableSepWidth)

	keyWidth := lipgloss.Width("KEY")
	valueWidth := lipgloss.Width("VALUE")
	for _, row := range rows {
		keyWidth = max(keyWidth, lipgloss.Width(row[0]))
		valueWidth = max(valueWidth, lipgloss.Width(row[1]))
	}
	keyWidth = min(keyWidth, maxKeyColWidth)
	if limit := opts.maxWidth(); limit > 0 {
		valueWidth = max(min(valueWidth, limit-keyWidth-tableSepWidth), minValueWidth)
	}

	var b strings.Builder
	b.WriteString(style(headerStyle, padRight("KEY", keyWidth), opts) + sep +
		style(headerStyle, padRight("VALUE", valueWidth), opts) + "\n")
	b.WriteString(style(separatorStyle, strings.Repeat("─", keyWidth+tableSepWidth+valueWidth), opts) + "\n")

	for _, row := range rows {
		keyStr := padRight(truncate(row[0], keyWidth), keyWidth)
		valStr := truncate(row[1], valueWidth)
		b.WriteString(style(keyStyle, keyStr, opts) + sep + styleValue(valStr, opts) + "\n")
	}
	return b.String()
}

// RenderColumnarTable renders record rows with one column per field and a
// leading row number column.
func RenderColumnarTable(columns []string, rows [][]string, opts Options) string {
	if len(columns) == 0 {
		return ""
	}
	sep := strings.Repeat(" ", tableSepWidth)
	rowNumWidth := len(fmt.Sprintf("%d", len(rows))) + 2

	available := 0
	if limit := opts.maxWidth(); limit > 0 {
		available = limit - rowNumWidth - tableSepWidth
	}
	widths := calculateColumnWidths(columns, rows, available)

	var b strings.Builder
	header := []string{style(headerStyle, padRight("#", rowNumWidth), opts)}
	total := rowNumWidth
	for i, col := range columns {
		header = append(header, style(headerStyle, padRight(truncate(col, widths[i]), widths[i]), opts))
		total += tableSepWidth + widths[i]
	}
	b.WriteString(strings.Join(header, sep) + "\n")
	b.WriteString(style(separatorStyle, strings.Repeat("─", total), opts) + "\n")

	for i, row := range rows {
		parts := []string{style(keyStyle, padRight(FormatArrayIndex(i, rowStyle(opts)), rowNumWidth), opts)}
		for j, val := range row {
			parts = append(parts, styleValue(padRight(truncate(val, widths[j]), widths[j]), opts))
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")
	}
	return b.String()
}

func calculateColumnWidths(columns []string, rows [][]string, availableWidth int) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range rows {
		for i, val := range row {
			widths[i] = max(widths[i], lipgloss.Width(val))
		}
	}

	usable := availableWidth - (len(columns)-1)*tableSepWidth
	if availableWidth <= 0 || sum(widths) <= usable {
		return widths
	}

	for i := range widths {
		widths[i] = min(widths[i], maxColWidth)
	}
	for sum(widths) > usable {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

// rowStyle defaults record row labels to 1-based numbers.
func rowStyle(opts Options) string {
	if opts.ArrayStyle == "" {
		return "numbered"
	}
	return opts.ArrayStyle
}

func sum(ws []int) int {
	total := 0
	for _, w := range ws {
		total += w
	}
	return total
}

// styleValue renders expansion markers faint and everything else in the
// value color.
func styleValue(s string, opts Options) string {
	for _, marker := range []string{CollapsedMarker, ExpandedMarker} {
		if rest, ok := strings.CutPrefix(s, marker); ok {
			return style(markerStyle, marker, opts) + style(valueStyle, rest, opts)
		}
	}
	return style(valueStyle, s, opts)
}
