// Package formatter turns presentation trees into text: an ASCII tree,
// terminal tables, Markdown, HTML, Mermaid, JSON and YAML.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/kvtree/internal/render"
)

// Format selects an output style.
type Format string

const (
	FormatTree     Format = "tree"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMermaid  Format = "mermaid"
)

// ValidFormats lists the accepted output formats.
var ValidFormats = []Format{FormatTree, FormatTable, FormatMarkdown, FormatHTML, FormatJSON, FormatYAML, FormatMermaid}

// ParseFormat validates an output format name. Empty selects FormatTree.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTree, nil
	}
	for _, f := range ValidFormats {
		if Format(strings.ToLower(s)) == f {
			return f, nil
		}
	}
	switch strings.ToLower(s) {
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format %q: valid values are tree, table, markdown, html, json, yaml, mermaid", s)
}

// Markers shown in front of expandable cells.
const (
	CollapsedMarker = "[+]"
	ExpandedMarker  = "[-]"
)

// Options controls text output.
type Options struct {
	// NoColor disables ANSI styling.
	NoColor bool
	// Width caps table width; 0 uses the terminal width, negative disables
	// truncation.
	Width int
	// ShowKeys appends the path key to every expandable cell so it can be
	// passed back with --expand.
	ShowKeys bool
	// ArrayStyle controls record row labels: "index" = [0], [1];
	// "numbered" = 1, 2; "bullet" = •; "none" = no label.
	ArrayStyle string
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
}

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")
	defaultTitleColor = lipgloss.Color("13")
	defaultMarkerFG   = lipgloss.Color("244")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	titleStyle     lipgloss.Style
	markerStyle    lipgloss.Style
)

// TableColors controls the rendered colors for tables. Nil fields fall back
// to the defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	TitleColor     color.Color
	MarkerColor    color.Color
}

func orDefault(c, d color.Color) color.Color {
	if c == nil {
		return d
	}
	return c
}

// SetTableTheme overrides the package styles.
func SetTableTheme(tc TableColors) {
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(orDefault(tc.HeaderFG, defaultHeaderFG)).
		Background(orDefault(tc.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(orDefault(tc.TitleColor, defaultTitleColor))
	markerStyle = lipgloss.NewStyle().Faint(true).Foreground(orDefault(tc.MarkerColor, defaultMarkerFG))
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	SetTableTheme(TableColors{})
}

// Render formats n in the requested style.
func Render(n render.Node, f Format, opts Options) (string, error) {
	switch f {
	case FormatTree, "":
		return FormatAsTree(n, opts), nil
	case FormatTable:
		return FormatAsTable(n, opts), nil
	case FormatMarkdown:
		return FormatAsMarkdown(n, opts), nil
	case FormatHTML:
		return FormatAsHTML(n, opts), nil
	case FormatJSON:
		return FormatAsJSON(n)
	case FormatYAML:
		return FormatAsYAML(n)
	case FormatMermaid:
		return FormatAsMermaid(n, opts), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", f)
	}
}

// Write formats n and writes it to w with a trailing newline.
func Write(w io.Writer, n render.Node, f Format, opts Options) error {
	out, err := Render(n, f, opts)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

// FormatAsJSON returns the presentation tree as indented JSON.
func FormatAsJSON(n render.Node) (string, error) {
	b, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode presentation tree: %w", err)
	}
	return string(b), nil
}

// cellText returns the single-line text for a cell and, when the cell is
// expanded or holds a nested table or card, the content the caller lays out
// separately.
// esc makes text safe for a single-line cell.
func cellText(n render.Node, opts Options, esc func(string) string) (string, render.Node) {
	switch c := n.(type) {
	case *render.ScalarCell:
		return esc(c.Text), nil
	case *render.ExpandableCell:
		if !c.Expanded {
			return withKey(CollapsedMarker+" "+esc(c.Summary), c.Key, opts), nil
		}
		if len(c.Children) == 1 {
			return withKey(ExpandedMarker, c.Key, opts), c.Children[0]
		}
		return withKey(ExpandedMarker, c.Key, opts), &render.Card{Children: c.Children}
	case *render.Table, *render.Card:
		return "", n
	}
	return "", nil
}

func withKey(s string, key fmt.Stringer, opts Options) string {
	if !opts.ShowKeys {
		return s
	}
	return s + " (" + key.String() + ")"
}

// escapeScalarString flattens line breaks so table rows stay single-line.
func escapeScalarString(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// truncate shortens s to maxLen display columns, ending with "...".
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight pads s with spaces to width display columns.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// terminalWidth returns the stdout terminal width, or 120 when stdout is not
// a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}

func (o Options) maxWidth() int {
	switch {
	case o.Width > 0:
		return o.Width
	case o.Width < 0:
		return 0
	default:
		return terminalWidth()
	}
}

func style(s lipgloss.Style, text string, opts Options) string {
	if opts.NoColor {
		return text
	}
	return s.Render(text)
}
