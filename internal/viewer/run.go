package viewer

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/kvtree/pkg/core"
)

// Run starts the interactive viewer and blocks until the user quits.
// Width and height of 0 let bubbletea detect the terminal size. Extra
// ProgramOptions (e.g. custom IO) are passed to tea.NewProgram.
func Run(s *core.Session, opts Options, width, height int, progOpts ...tea.ProgramOption) error {
	m := New(s, opts)
	if width > 0 && height > 0 {
		m.width, m.height = width, height
		progOpts = append(progOpts, tea.WithWindowSize(width, height))
	}
	if _, err := tea.NewProgram(m, progOpts...).Run(); err != nil {
		return fmt.Errorf("interactive viewer: %w", err)
	}
	return nil
}
