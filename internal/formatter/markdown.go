package formatter

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/kvtree/internal/render"
)

const maxHeadingLevel = 6

var markdownEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"|", "\\|",
)

// escapeMarkdownCell escapes text for a pipe table cell.
func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(markdownEscaper.Replace(s), "\n", "<br>")
}

// FormatAsMarkdown renders a presentation tree as Markdown. Card titles and
// nested cell contents become headings one level below their parent; tables
// become pipe tables.
func FormatAsMarkdown(n render.Node, opts Options) string {
	var sections []section
	flatten(nil, n, &sections)

	var b strings.Builder
	for _, s := range sections {
		writeMarkdownSection(&b, s, opts)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeMarkdownSection(b *strings.Builder, s section, opts Options) {
	if len(s.path) > 0 {
		level := min(len(s.path)+1, maxHeadingLevel)
		b.WriteString(strings.Repeat("#", level) + " " + markdownEscaper.Replace(s.path[len(s.path)-1]) + "\n\n")
	}

	var nested []section
	switch v := s.node.(type) {
	case *render.Table:
		if v.IsKeyValue() {
			b.WriteString("| Key | Value |\n| --- | --- |\n")
			for _, row := range v.Rows {
				text, inner := cellText(row.Cells[0], opts, escapeMarkdownCell)
				if inner != nil {
					nested = append(nested, section{path: appendPath(s.path, row.Label), node: inner})
				}
				b.WriteString("| " + escapeMarkdownCell(row.Label) + " | " + text + " |\n")
			}
		} else {
			b.WriteString("| # |")
			for _, c := range v.Columns {
				b.WriteString(" " + escapeMarkdownCell(c.Label) + " |")
			}
			b.WriteString("\n| --- |" + strings.Repeat(" --- |", len(v.Columns)) + "\n")
			for i, row := range v.Rows {
				b.WriteString("| " + FormatArrayIndex(i, rowStyle(opts)) + " |")
				for j, cell := range row.Cells {
					text, inner := cellText(cell, opts, escapeMarkdownCell)
					if inner != nil {
						title := FormatArrayIndex(i, "index") + " " + v.Columns[j].Label
						nested = append(nested, section{path: appendPath(s.path, title), node: inner})
						if text == "" {
							text = "→ " + escapeMarkdownCell(title)
						}
					}
					b.WriteString(" " + text + " |")
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	case *render.ExpandableCell:
		text, inner := cellText(v, opts, escapeMarkdownCell)
		b.WriteString(text + "\n\n")
		if inner != nil {
			var sub []section
			flatten(s.path, inner, &sub)
			for _, child := range sub {
				child.path = nil
				writeMarkdownSection(b, child, opts)
			}
		}
	case *render.ScalarCell:
		lines := strings.Split(strings.ReplaceAll(v.Text, "\r\n", "\n"), "\n")
		for i, line := range lines {
			lines[i] = markdownEscaper.Replace(line)
		}
		b.WriteString(strings.Join(lines, "  \n") + "\n\n")
	}

	for _, ns := range nested {
		var sub []section
		flatten(ns.path, ns.node, &sub)
		for _, child := range sub {
			writeMarkdownSection(b, child, opts)
		}
	}
}

// FormatAsHTML renders the Markdown output as an HTML fragment.
func FormatAsHTML(n render.Node, opts Options) string {
	md := []byte(FormatAsMarkdown(n, opts))

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(md)

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return string(markdown.Render(doc, renderer))
}
