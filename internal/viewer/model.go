// Package viewer is the interactive terminal view over a session: a
// scrolling list of lines where expandable cells toggle in place.
package viewer

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kvtree/internal/formatter"
	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/pkg/core"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	indentWidth   = 2
	// rows taken by the title and footer
	chromeRows = 3
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	markerStyle   = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Options configures the viewer.
type Options struct {
	Title       string
	NoColor     bool
	ArrayStyle  string
	KeyBindings map[string]Action
}

// Model is the bubbletea model of the viewer.
type Model struct {
	session *core.Session
	opts    Options

	lines  []Line
	cursor int
	offset int
	width  int
	height int

	search    textinput.Model
	searching bool
	query     string

	status   string
	isError  bool
	showHelp bool
}

// New builds a viewer over s and renders its current state.
func New(s *core.Session, opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 200

	m := &Model{
		session: s,
		opts:    opts,
		width:   defaultWidth,
		height:  defaultHeight,
		search:  ti,
	}
	m.refresh()
	return m
}

// Lines returns the currently visible lines.
func (m *Model) Lines() []Line { return m.lines }

// Cursor returns the index of the selected line.
func (m *Model) Cursor() int { return m.cursor }

// Status returns the last status message.
func (m *Model) Status() string { return m.status }

// refresh re-renders the session, keeping the cursor on the same key when
// it is still visible.
func (m *Model) refresh() {
	var current pathkey.Key
	tracked := false
	if m.cursor < len(m.lines) && m.lines[m.cursor].Toggleable() {
		current, tracked = m.lines[m.cursor].Key, true
	}
	m.lines = Lines(m.session.Render(), m.opts.ArrayStyle)
	if tracked {
		for i, l := range m.lines {
			if l.Toggleable() && l.Key == current {
				m.cursor = i
				break
			}
		}
	}
	m.clamp()
}

func (m *Model) clamp() {
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	rows := m.pageRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) pageRows() int {
	return max(m.height-chromeRows, 1)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.SetWidth(max(m.width-2, 10))
		m.clamp()
		return m, nil
	case tea.KeyPressMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m, m.apply(ActionForKey(m.opts.KeyBindings, msg.String()))
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.query = strings.TrimSpace(m.search.Value())
		m.searching = false
		m.search.Blur()
		m.findNext(m.cursor)
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// apply runs action and returns the command to hand back to bubbletea.
func (m *Model) apply(action Action) tea.Cmd {
	m.isError = false
	switch action {
	case ActionDown:
		m.cursor++
	case ActionUp:
		m.cursor--
	case ActionPageDown:
		m.cursor += m.pageRows()
	case ActionPageUp:
		m.cursor -= m.pageRows()
	case ActionTop:
		m.cursor = 0
	case ActionBottom:
		m.cursor = len(m.lines) - 1
	case ActionToggle:
		m.toggle()
		return nil
	case ActionExpandAll:
		n := m.session.ExpandAll()
		m.status = fmt.Sprintf("expanded %d", n)
		m.refresh()
		return nil
	case ActionCollapseAll:
		n := m.session.CollapseAll()
		m.status = fmt.Sprintf("collapsed %d", n)
		m.refresh()
		return nil
	case ActionSearch:
		m.searching = true
		m.search.SetValue("")
		return m.search.Focus()
	case ActionNextMatch:
		m.findNext(m.cursor + 1)
	case ActionHelp:
		m.showHelp = !m.showHelp
	case ActionQuit:
		return tea.Quit
	}
	m.clamp()
	return nil
}

func (m *Model) toggle() {
	if len(m.lines) == 0 {
		return
	}
	line := m.lines[m.cursor]
	if !line.Toggleable() {
		m.status = "nothing to expand"
		return
	}
	name := line.Key.String()
	if line.Key == pathkey.Root {
		name = "root"
	}
	if m.session.Toggle(line.Key) {
		m.status = "expanded " + name
	} else {
		m.status = "collapsed " + name
	}
	m.refresh()
}

// findNext moves the cursor to the first line at or after from whose text
// contains the query, wrapping around.
func (m *Model) findNext(from int) {
	if m.query == "" || len(m.lines) == 0 {
		return
	}
	needle := strings.ToLower(m.query)
	for i := range m.lines {
		idx := (from + i) % len(m.lines)
		if strings.Contains(strings.ToLower(m.lines[idx].Text), needle) {
			m.cursor = idx
			m.status = fmt.Sprintf("match %q", m.query)
			m.clamp()
			return
		}
	}
	m.status = fmt.Sprintf("no match for %q", m.query)
	m.isError = true
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render returns the screen contents as a string.
func (m *Model) Render() string {
	var b strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "kvtree"
	}
	b.WriteString(m.style(titleStyle, title) + "\n")

	end := min(m.offset+m.pageRows(), len(m.lines))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderLine(i) + "\n")
	}
	for i := end - m.offset; i < m.pageRows(); i++ {
		b.WriteString("\n")
	}

	switch {
	case m.searching:
		b.WriteString(m.search.View() + "\n")
	case m.isError:
		b.WriteString(m.style(errorStyle, m.status) + "\n")
	default:
		pos := fmt.Sprintf("%d/%d", min(m.cursor+1, len(m.lines)), len(m.lines))
		b.WriteString(m.style(statusStyle, strings.TrimSpace(pos+"  "+m.status)) + "\n")
	}
	if m.showHelp {
		b.WriteString(m.style(helpLineStyle, helpText))
	}
	return b.String()
}

func (m *Model) renderLine(i int) string {
	line := m.lines[i]
	indent := strings.Repeat(" ", line.Depth*indentWidth)
	text := line.Text
	if avail := m.width - len(indent); avail > 3 {
		text = runewidth.Truncate(text, avail, "...")
	}

	if i == m.cursor {
		return indent + m.style(cursorStyle, text)
	}
	switch {
	case line.Heading:
		text = m.style(headingStyle, text)
	case line.Toggleable():
		text = m.styleMarker(text)
	}
	return indent + text
}

func (m *Model) styleMarker(text string) string {
	for _, marker := range []string{formatter.CollapsedMarker, formatter.ExpandedMarker} {
		if i := strings.Index(text, marker); i >= 0 {
			return text[:i] + m.style(markerStyle, marker) + text[i+len(marker):]
		}
	}
	return text
}

func (m *Model) style(s lipgloss.Style, text string) string {
	if m.opts.NoColor {
		return text
	}
	return s.Render(text)
}
