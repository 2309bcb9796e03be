// Package cmd implements the kvtree command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvtree/internal/config"
	"github.com/oakwood-commons/kvtree/internal/formatter"
	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/viewer"
	"github.com/oakwood-commons/kvtree/pkg/core"
	"github.com/oakwood-commons/kvtree/pkg/logger"
	"github.com/oakwood-commons/kvtree/pkg/settings"
)

// errNoInput is returned when no file is given and stdin is a terminal.
var errNoInput = errors.New("no input provided")

// rootOptions holds the flags of the root command.
type rootOptions struct {
	common      commonOptions
	output      string
	expand      []string
	expandAll   bool
	stateFile   string
	interactive bool
	showKeys    bool
	arrayStyle  string
	width       int
	height      int
	treeDepth   int
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file|-]",
		Short: "Render nested documents as expandable trees and tables",
		Long: `kvtree turns nested JSON, YAML, TOML or NDJSON documents into a
presentation tree: short records become key/value tables, record lists become
tables with one column per field, and long text or large records collapse
behind toggles addressed by stable path keys.`,
		Example: `  kvtree order.json
  kvtree order.json -o table -e customer -e notes
  kvtree order.yaml --expand-all -o markdown
  cat events.ndjson | kvtree --expr '_.filter(x, x.level == "error")' --limit 5
  kvtree keys order.json
  kvtree order.json -i --state order.state.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupRun(cmd, &opts.common)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRoot(cmd, args, opts)
			if errors.Is(err, errNoInput) {
				return cmd.Help()
			}
			return err
		},
	}

	opts.common.register(cmd.PersistentFlags())
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "tree", "output format: tree|table|markdown|html|json|yaml|mermaid")
	f.StringArrayVarP(&opts.expand, "expand", "e", nil, "expand a path key (repeatable); see 'kvtree keys'")
	f.BoolVar(&opts.expandAll, "expand-all", false, "expand every expandable node")
	f.StringVar(&opts.stateFile, "state", "", "expansion state file (JSON, or YAML by extension); written back after -i exits")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "start the interactive viewer")
	f.BoolVar(&opts.showKeys, "show-keys", false, "append the path key to every expandable cell")
	f.StringVar(&opts.arrayStyle, "array-style", "index", "record row labels: index, numbered, bullet, none")
	f.IntVar(&opts.width, "width", 0, "output width in columns (0 = terminal width, -1 = no truncation)")
	f.IntVar(&opts.height, "height", 0, "viewer height in rows (0 = terminal height)")
	f.IntVar(&opts.treeDepth, "tree-depth", 0, "limit tree output depth (0 = unlimited)")

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.AddCommand(newKeysCmd(&opts.common))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newFunctionsCmd())
	cmd.AddCommand(newConfigCmd(&opts.common))
	for _, c := range append(cmd.Commands(), cmd) {
		if c.RunE != nil {
			c.RunE = syncingLogs(&opts.common, c.RunE)
		}
	}
	return cmd
}

// syncingLogs flushes the command's logger after run returns, including on
// error.
func syncingLogs(common *commonOptions, run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer func() {
			if common.logSync == nil {
				return
			}
			if err := common.logSync(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: failed to sync logger: %v\n", err)
			}
		}()
		return run(cmd, args)
	}
}

// setupRun builds the logger and run settings and stores both in the
// command context.
func setupRun(cmd *cobra.Command, common *commonOptions) error {
	level := common.logLevel
	if common.debug {
		level = logger.DebugLevel
	}
	var lgr *logr.Logger
	if cmd.ErrOrStderr() == os.Stderr {
		lgr = logger.Get(level)
	} else {
		l, zl := logger.New(level, cmd.ErrOrStderr())
		lgr = &l
		common.logSync = zl.Sync
	}
	lgr = logger.WithValues(lgr, logger.CommandKey, cmd.Name())

	run := settings.NewCliParams()
	run.MinLogLevel = level
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(settings.IntoContext(ctx, run), lgr)
	cmd.SetContext(ctx)
	return nil
}

func runRoot(cmd *cobra.Command, args []string, opts *rootOptions) error {
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)
	run := settings.FromContextOrDefault(ctx)

	cfg, err := loadConfig(cmd, &opts.common)
	if err != nil {
		return err
	}
	applyRootFlags(cmd.Flags(), opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	formatter.SetTableTheme(cfg.Theme.TableColors())

	out := cmd.OutOrStdout()
	if !cmd.Flags().Changed("no-color") && !cfg.NoColor && !isTerminal(out) {
		cfg.NoColor = true
	}
	run.Output = string(format)
	run.NoColor = cfg.NoColor
	run.Interactive = opts.interactive

	engine, err := newEngine(cfg, *lgr)
	if err != nil {
		return err
	}
	v, err := readInput(cmd, args, &run.Input)
	if err != nil {
		return err
	}
	lgr.V(1).Info("input loaded", logger.SourceKey, run.Source())

	v, err = engine.Prepare(v, opts.common.expr)
	if err != nil {
		return err
	}

	session := engine.NewSession(v)
	if opts.stateFile != "" {
		st, err := core.ReadStateFile(opts.stateFile)
		if err != nil {
			return err
		}
		if err := session.ApplyState(st); err != nil {
			return err
		}
	}
	for _, k := range opts.expand {
		session.Set(pathkey.Key(k), true)
	}
	if opts.expandAll {
		session.ExpandAll()
	}

	if opts.interactive {
		return runViewer(cmd, session, cfg, opts, run)
	}

	fopts := cfg.FormatterOptions()
	fopts.MaxDepth = opts.treeDepth
	text, err := engine.Format(session.Render(), format, fopts)
	if err != nil {
		return err
	}
	lgr.V(1).Info("rendered", logger.FormatKey, string(format), logger.KeysKey, len(session.ExpandedKeys()))
	return writeLine(out, text)
}

func runViewer(cmd *cobra.Command, session *core.Session, cfg config.Config, opts *rootOptions, run *settings.Run) error {
	progOpts, cleanup := programOptions(cmd, run)
	defer cleanup()

	title := settings.CliBinaryName
	if src := run.Source(); src != "none" {
		title += " " + src
	}
	err := viewer.Run(session, viewer.Options{
		Title:      title,
		NoColor:    cfg.NoColor,
		ArrayStyle: cfg.ArrayStyle,
	}, opts.width, opts.height, progOpts...)
	if err != nil {
		return err
	}
	if opts.stateFile != "" {
		return core.WriteStateFile(opts.stateFile, session.State())
	}
	return nil
}

func newEngine(cfg config.Config, lgr logr.Logger) (*core.Engine, error) {
	return core.New(
		core.WithRenderOptions(cfg.Render),
		core.WithLimit(cfg.Limit),
		core.WithAutoDecode(cfg.AutoDecode == config.AutoDecodeEager),
		core.WithLogger(lgr),
	)
}

func writeLine(w io.Writer, s string) error {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
