package viewer

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/render"
	"github.com/oakwood-commons/kvtree/pkg/core"
	jv "github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

var bio = strings.Repeat("abcdefghij", 30)

func newModel(t *testing.T) *Model {
	t.Helper()
	e, err := core.New()
	require.NoError(t, err)
	doc := jv.Object(
		jv.F("name", jv.String("Bob")),
		jv.F("bio", jv.String(bio)),
	)
	return New(e.NewSession(doc), Options{NoColor: true})
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		switch k {
		case "enter":
			m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
		case "esc":
			m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
		default:
			for _, r := range k {
				m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
			}
		}
	}
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestLinesKeyValueTable(t *testing.T) {
	table := &render.Table{Rows: []render.Row{
		{Key: "name", Label: "Name", Cells: []render.Node{&render.ScalarCell{Text: "Bob"}}},
		{Key: "note", Label: "Note", Cells: []render.Node{&render.ScalarCell{Text: "a\nb"}}},
	}}
	lines := Lines(table, "")
	assert.Equal(t, []string{"Name: Bob", "Note: a", "b"}, texts(lines))
	assert.Equal(t, 1, lines[2].Depth)
}

func TestLinesRecordTable(t *testing.T) {
	table := &render.Table{
		Columns: []render.Column{{Key: "id", Label: "Id"}, {Key: "name", Label: "Name"}},
		Rows: []render.Row{
			{Cells: []render.Node{&render.ScalarCell{Text: "1"}, &render.ScalarCell{Text: "a"}}},
			{Cells: []render.Node{&render.ScalarCell{Text: "2"}, &render.ScalarCell{}}},
		},
	}
	lines := Lines(table, "index")
	assert.Equal(t, []string{"[0]", "Id: 1", "Name: a", "[1]", "Id: 2"}, texts(lines))
	assert.True(t, lines[0].Heading)
	assert.Equal(t, 1, lines[1].Depth)
}

func TestLinesExpandableCell(t *testing.T) {
	collapsed := &render.ExpandableCell{Key: "bio", Summary: "abc..."}
	lines := Lines(collapsed, "")
	require.Len(t, lines, 1)
	assert.Equal(t, "[+] abc...", lines[0].Text)
	assert.Equal(t, pathkey.Key("bio"), lines[0].Key)
	assert.True(t, lines[0].Toggleable())

	expanded := &render.ExpandableCell{Key: "bio", Expanded: true, Children: []render.Node{&render.ScalarCell{Text: "abcdef"}}}
	lines = Lines(expanded, "")
	assert.Equal(t, []string{"[-]", "abcdef"}, texts(lines))
	assert.True(t, lines[0].Expanded)
	assert.Equal(t, 1, lines[1].Depth)
}

func TestLinesCardInlinesScalarChildren(t *testing.T) {
	card := &render.Card{Children: []render.Node{
		&render.Card{Key: "id", Title: "Id", Children: []render.Node{&render.ScalarCell{Text: "7"}}},
		&render.Card{Key: "owner", Title: "Owner", Children: []render.Node{&render.Table{Rows: []render.Row{
			{Key: "name", Label: "Name", Cells: []render.Node{&render.ScalarCell{Text: "Ann"}}},
		}}}},
	}}
	assert.Equal(t, []string{"Id: 7", "Owner", "Name: Ann"}, texts(Lines(card, "")))
}

func TestToggleWithEnter(t *testing.T) {
	m := newModel(t)
	require.Len(t, m.Lines(), 2)
	assert.True(t, strings.HasPrefix(m.Lines()[1].Text, "Bio: [+] "))

	press(m, "j", "enter")
	assert.Equal(t, "Bio: [-]", m.Lines()[1].Text)
	assert.Equal(t, bio, m.Lines()[2].Text)
	assert.Equal(t, 1, m.Cursor())
	assert.Equal(t, "expanded bio", m.Status())

	press(m, "enter")
	assert.Len(t, m.Lines(), 2)
}

func TestToggleRootLongText(t *testing.T) {
	e, err := core.New()
	require.NoError(t, err)
	text := strings.Repeat("z", 200)
	s := e.NewSession(jv.String(text))
	require.Equal(t, []pathkey.Key{pathkey.Root}, s.Keys())

	m := New(s, Options{NoColor: true})
	require.Len(t, m.Lines(), 1)
	assert.True(t, m.Lines()[0].Toggleable())
	assert.True(t, strings.HasPrefix(m.Lines()[0].Text, "[+] zzz"))

	press(m, "enter")
	assert.Equal(t, "expanded root", m.Status())
	assert.Equal(t, []string{"[-]", text}, texts(m.Lines()))
	assert.Equal(t, 0, m.Cursor())

	press(m, "enter")
	assert.Equal(t, "collapsed root", m.Status())
	assert.Len(t, m.Lines(), 1)
}

func TestPlainLinesWithEmptyKeyAreNotToggleable(t *testing.T) {
	lines := Lines(&render.ScalarCell{Text: "plain"}, "")
	require.Len(t, lines, 1)
	assert.Equal(t, pathkey.Root, lines[0].Key)
	assert.False(t, lines[0].Toggleable())
}

func TestToggleOnPlainLine(t *testing.T) {
	m := newModel(t)
	press(m, "enter")
	assert.Equal(t, "nothing to expand", m.Status())
	assert.Len(t, m.Lines(), 2)
}

func TestExpandAllCollapseAll(t *testing.T) {
	m := newModel(t)
	press(m, "e")
	assert.Len(t, m.Lines(), 3)
	assert.Equal(t, "expanded 1", m.Status())
	press(m, "c")
	assert.Len(t, m.Lines(), 2)
}

func TestCursorStaysInRange(t *testing.T) {
	m := newModel(t)
	press(m, "k", "k")
	assert.Equal(t, 0, m.Cursor())
	press(m, "G")
	assert.Equal(t, 1, m.Cursor())
	press(m, "jjj")
	assert.Equal(t, 1, m.Cursor())
	press(m, "g")
	assert.Equal(t, 0, m.Cursor())
}

func TestSearch(t *testing.T) {
	m := newModel(t)
	press(m, "/", "bio", "enter")
	assert.Equal(t, 1, m.Cursor())

	press(m, "/", "zzz", "enter")
	assert.Equal(t, 1, m.Cursor())
	assert.Contains(t, m.Status(), "no match")

	press(m, "/", "name", "esc")
	assert.Equal(t, 1, m.Cursor())
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestRenderScrollsWithCursor(t *testing.T) {
	e, err := core.New()
	require.NoError(t, err)
	fields := make([]jv.Field, 30)
	for i := range fields {
		fields[i] = jv.F(fmt.Sprintf("k%02d", i), jv.Int(int64(i)))
	}
	m := New(e.NewSession(jv.Object(fields...)), Options{NoColor: true, Title: "doc"})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 5})

	out := m.Render()
	assert.True(t, strings.HasPrefix(out, "doc\n"))
	assert.Contains(t, out, "K00: 0")
	assert.Contains(t, out, "1/30")

	press(m, "G")
	out = m.Render()
	assert.Contains(t, out, "K29: 29")
	assert.NotContains(t, out, "K00: 0")
	assert.Contains(t, out, "30/30")
}

func TestHelpToggle(t *testing.T) {
	m := newModel(t)
	assert.NotContains(t, m.Render(), "expand all")
	press(m, "?")
	assert.Contains(t, m.Render(), "expand all")
}

func TestActionForKey(t *testing.T) {
	assert.Equal(t, ActionToggle, ActionForKey(nil, "enter"))
	assert.Equal(t, ActionNone, ActionForKey(nil, "x"))
	custom := map[string]Action{"x": ActionQuit}
	assert.Equal(t, ActionQuit, ActionForKey(custom, "x"))
}
