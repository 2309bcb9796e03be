// Package render turns a value into a presentation tree of cells, tables
// and cards. Every collapsible node carries a pathkey.Key; the renderer reads
// expansion state through the Expansion interface and never mutates it.
package render

import (
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/oakwood-commons/kvtree/internal/keyfmt"
	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/shape"
	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// Expansion answers whether the node at a key is expanded. Absent keys must
// report false.
type Expansion interface {
	IsExpanded(key pathkey.Key) bool
}

// Collapsed is an Expansion with every node collapsed.
type Collapsed struct{}

func (Collapsed) IsExpanded(pathkey.Key) bool { return false }

// Renderer builds presentation trees. It is immutable and safe for
// concurrent use.
type Renderer struct {
	opts       Options
	classifier shape.Classifier
	labels     keyfmt.Formatter
}

// New returns a Renderer; zero thresholds in opts take their defaults.
func New(opts Options) *Renderer {
	opts = opts.withDefaults()
	return &Renderer{
		opts: opts,
		classifier: shape.Classifier{
			LongTextChars: opts.LongTextChars,
			LongTextLines: opts.LongTextLines,
		},
		labels: keyfmt.New(opts.KeyFormat),
	}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// Classify returns the shape of v under the renderer's thresholds.
func (r *Renderer) Classify(v jsonvalue.Value) shape.Kind { return r.classifier.Classify(v) }

// Label formats a raw field name for display.
func (r *Renderer) Label(raw string) string { return r.labels.Format(raw) }

// Render builds the presentation tree for v. A non-empty object passed here
// is the top-level record: it is never gated, its fields are pinned by
// PriorityKeys, and its children are addressed with pathkey.Field.
func (r *Renderer) Render(v jsonvalue.Value, prefix pathkey.Key, exp Expansion) Node {
	if exp == nil {
		exp = Collapsed{}
	}
	w := walker{r: r, exp: exp}
	if v.IsObject() && v.Len() > 0 {
		return w.top(v, prefix)
	}
	return w.node(v, prefix)
}

type walker struct {
	r   *Renderer
	exp Expansion
}

func (w walker) top(v jsonvalue.Value, key pathkey.Key) Node {
	fields := orderFields(v.Fields(), w.r.opts.PriorityKeys)
	if w.r.Classify(v) == shape.LeafRecord {
		return w.fieldTable(fields, key, pathkey.Field)
	}
	return w.fieldCards(fields, key)
}

// orderFields pins the priority keys first without rescanning fields for
// every key.
func orderFields(fields []jsonvalue.Field, priority []string) []jsonvalue.Field {
	if len(priority) == 0 {
		return fields
	}
	keys := make([]string, len(fields))
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
		index[f.Key] = i
	}
	out := make([]jsonvalue.Field, 0, len(fields))
	for _, k := range keyfmt.Order(keys, priority) {
		out = append(out, fields[index[k]])
	}
	return out
}

func (w walker) node(v jsonvalue.Value, key pathkey.Key) Node {
	switch w.r.Classify(v) {
	case shape.LongText:
		return w.longText(v.Str(), key)
	case shape.EmptyArray:
		return &ScalarCell{Text: "[]", Marker: true}
	case shape.EmptyRecord:
		return &ScalarCell{Text: "{}", Marker: true}
	case shape.ScalarArray:
		return &ScalarCell{Text: joinScalars(v.Items())}
	case shape.RecordArray:
		return w.recordArray(v, key)
	case shape.MixedArray:
		return w.mixedArray(v, key)
	case shape.LeafRecord:
		return w.leaf(v, key)
	case shape.NestedRecord:
		return w.fieldCards(v.Fields(), key)
	default:
		return scalarCell(v)
	}
}

func (w walker) longText(s string, key pathkey.Key) Node {
	cell := &ExpandableCell{Key: key, Summary: w.r.textSummary(s), Shape: shape.LongText}
	if w.exp.IsExpanded(key) {
		cell.Expanded = true
		cell.Children = []Node{&ScalarCell{Text: s}}
	}
	return cell
}

func (w walker) leaf(v jsonvalue.Value, key pathkey.Key) Node {
	if shape.CharCount(v.Indented()) <= w.r.opts.LargeContentChars {
		return w.fieldTable(v.Fields(), key, pathkey.LeafField)
	}
	cell := &ExpandableCell{
		Key:     key,
		Summary: cutGraphemes(v.Compact(), w.r.opts.LargeContentChars) + Ellipsis,
		Shape:   shape.LeafRecord,
	}
	if w.exp.IsExpanded(key) {
		cell.Expanded = true
		cell.Children = []Node{w.fieldTable(v.Fields(), key, pathkey.LeafField)}
	}
	return cell
}

// fieldTable lays out fields as a key/value table. childKey decides whether
// children are addressed as plain or leaf descendants.
func (w walker) fieldTable(fields []jsonvalue.Field, key pathkey.Key, childKey func(pathkey.Key, string) pathkey.Key) *Table {
	t := &Table{Rows: make([]Row, 0, len(fields))}
	for _, f := range fields {
		t.Rows = append(t.Rows, Row{
			Key:   f.Key,
			Label: w.r.Label(f.Key),
			Cells: []Node{w.node(f.Value, childKey(key, f.Key))},
		})
	}
	return t
}

// fieldCards lays out every field of a nested record under its own header.
func (w walker) fieldCards(fields []jsonvalue.Field, key pathkey.Key) *Card {
	c := &Card{Children: make([]Node, 0, len(fields))}
	for _, f := range fields {
		c.Children = append(c.Children, &Card{
			Key:      f.Key,
			Title:    w.r.Label(f.Key),
			Children: []Node{w.node(f.Value, pathkey.Field(key, f.Key))},
		})
	}
	return c
}

func (w walker) recordArray(v jsonvalue.Value, key pathkey.Key) *Table {
	cols := shape.Columns(v)
	t := &Table{
		Columns: make([]Column, len(cols)),
		Rows:    make([]Row, 0, v.Len()),
	}
	for i, c := range cols {
		t.Columns[i] = Column{Key: c, Label: w.r.Label(c)}
	}
	for i, item := range v.Items() {
		row := Row{Key: strconv.Itoa(i), Cells: make([]Node, len(cols))}
		for j, c := range cols {
			val, ok := item.Get(c)
			switch {
			case !ok:
				row.Cells[j] = &ScalarCell{}
			case val.IsObject() || val.IsArray():
				row.Cells[j] = w.node(val, pathkey.Field(pathkey.Index(key, i), c))
			default:
				row.Cells[j] = scalarCell(val)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (w walker) mixedArray(v jsonvalue.Value, key pathkey.Key) *Table {
	t := &Table{Rows: make([]Row, 0, v.Len())}
	for i, item := range v.Items() {
		t.Rows = append(t.Rows, Row{
			Key:   strconv.Itoa(i),
			Label: "[" + strconv.Itoa(i) + "]",
			Cells: []Node{w.node(item, pathkey.Index(key, i))},
		})
	}
	return t
}

func scalarCell(v jsonvalue.Value) *ScalarCell {
	return &ScalarCell{Text: v.Text(), Marker: v.IsNull()}
}

func joinScalars(items []jsonvalue.Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Text()
	}
	return strings.Join(parts, ", ")
}

// textSummary is the collapsed form of long text. Text with more lines than
// LongTextLines keeps its first lines whatever their length. Otherwise it is
// cut at LargeContentChars, or at LongTextChars when it is no longer than
// LargeContentChars.
func (r *Renderer) textSummary(s string) string {
	s = shape.NormalizeNewlines(s)
	if lines := strings.Split(s, "\n"); len(lines) > r.opts.LongTextLines {
		return strings.Join(lines[:r.opts.LongTextLines], "\n") + Ellipsis
	}
	limit := r.opts.LargeContentChars
	if shape.CharCount(s) <= limit {
		limit = r.opts.LongTextChars
	}
	return cutGraphemes(s, limit) + Ellipsis
}

// cutGraphemes returns the first n grapheme clusters of s.
func cutGraphemes(s string, n int) string {
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for i := 0; i < n && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	return b.String()
}
