package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
	"github.com/oakwood-commons/kvtree/pkg/loader"
	"github.com/oakwood-commons/kvtree/pkg/settings"
)

// readInput loads the document named by args, or stdin when args is empty
// or "-". A terminal on stdin with no file argument yields errNoInput.
func readInput(cmd *cobra.Command, args []string, in *settings.InputSettings) (jsonvalue.Value, error) {
	if len(args) == 1 && args[0] != "-" {
		in.Path = args[0]
		return loader.LoadFile(args[0])
	}
	stdin := cmd.InOrStdin()
	if len(args) == 0 && isTerminal(stdin) {
		return jsonvalue.Value{}, errNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("failed to read from stdin: %w", err)
	}
	in.FromStdin = true
	return loader.LoadRootBytes(data)
}

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// programOptions wires the viewer to the command's output and, when the
// document came from stdin, to the controlling terminal for key input.
func programOptions(cmd *cobra.Command, run *settings.Run) ([]tea.ProgramOption, func()) {
	opts := []tea.ProgramOption{tea.WithOutput(cmd.OutOrStdout())}
	if !run.Input.FromStdin {
		return append(opts, tea.WithInput(cmd.InOrStdin())), func() {}
	}
	tty, err := os.Open(ttyDevice(runtime.GOOS))
	if err != nil {
		return opts, func() {}
	}
	return append(opts, tea.WithInput(tty)), func() { _ = tty.Close() }
}

func ttyDevice(goos string) string {
	if goos == "windows" {
		return "CONIN$"
	}
	return "/dev/tty"
}
