package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/kvtree/internal/config"
	"github.com/oakwood-commons/kvtree/internal/keyfmt"
)

// commonOptions are the flags shared by every command that loads a document.
type commonOptions struct {
	configFile        string
	logLevel          int8
	debug             bool
	noColor           bool
	expr              string
	autoDecode        string
	keyFormat         string
	priorityKeys      []string
	longTextChars     int
	largeContentChars int
	longTextLines     int
	limit             int
	offset            int
	tail              int

	// logSync flushes a logger built for a non-stderr writer.
	logSync func() error
}

func (o *commonOptions) register(f *pflag.FlagSet) {
	f.StringVar(&o.configFile, "config-file", "", "path to a YAML or TOML config file (default $XDG_CONFIG_HOME/kvtree/config.yaml)")
	f.Int8Var(&o.logLevel, "log-level", 0, "log level: 0 = info, -1 = debug, higher is quieter")
	f.BoolVar(&o.debug, "debug", false, "shorthand for --log-level -1")
	f.BoolVar(&o.noColor, "no-color", false, "disable color output")
	f.StringVar(&o.expr, "expr", "", "CEL expression selecting the sub-tree to show, with '_' as the root. Example: '_.items.filter(x, x.available)'")
	f.StringVar(&o.autoDecode, "auto-decode", "", "decode JSON, YAML and JWT strings inside the document: eager or disabled")
	f.StringVar(&o.keyFormat, "key-format", "", "label capitalisation: simple or title")
	f.StringSliceVar(&o.priorityKeys, "priority-keys", nil, "top-level keys shown first, in order (comma separated)")
	f.IntVar(&o.longTextChars, "long-text-chars", 0, "characters a string must exceed to collapse")
	f.IntVar(&o.largeContentChars, "large-content-chars", 0, "serialized size a flat record must exceed to collapse, and summary length")
	f.IntVar(&o.longTextLines, "long-text-lines", 0, "lines a string must exceed to be summarised by lines")
	f.IntVar(&o.limit, "limit", 0, "show only the first N records")
	f.IntVar(&o.offset, "offset", 0, "skip the first N records")
	f.IntVar(&o.tail, "tail", 0, "show only the last N records (mutually exclusive with --limit; ignores --offset)")
}

// loadConfig reads the config file and applies the common flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command, o *commonOptions) (config.Config, error) {
	cfg, err := config.Load(config.ResolvePath(o.configFile))
	if err != nil {
		return cfg, err
	}
	applyCommonFlags(cmd.Flags(), o, &cfg)
	return cfg, nil
}

func applyCommonFlags(f *pflag.FlagSet, o *commonOptions, cfg *config.Config) {
	if f.Changed("no-color") {
		cfg.NoColor = o.noColor
	}
	if f.Changed("auto-decode") {
		cfg.AutoDecode = o.autoDecode
	}
	if f.Changed("key-format") {
		cfg.Render.KeyFormat = keyfmt.Mode(o.keyFormat)
	}
	if f.Changed("priority-keys") {
		cfg.Render.PriorityKeys = append([]string(nil), o.priorityKeys...)
	}
	if f.Changed("long-text-chars") {
		cfg.Render.LongTextChars = o.longTextChars
	}
	if f.Changed("large-content-chars") {
		cfg.Render.LargeContentChars = o.largeContentChars
	}
	if f.Changed("long-text-lines") {
		cfg.Render.LongTextLines = o.longTextLines
	}
	if f.Changed("limit") {
		cfg.Limit.Limit = o.limit
	}
	if f.Changed("offset") {
		cfg.Limit.Offset = o.offset
	}
	if f.Changed("tail") {
		cfg.Limit.Tail = o.tail
	}
}

func applyRootFlags(f *pflag.FlagSet, o *rootOptions, cfg *config.Config) {
	if f.Changed("output") {
		cfg.Output = o.output
	}
	if f.Changed("show-keys") {
		cfg.ShowKeys = o.showKeys
	}
	if f.Changed("array-style") {
		cfg.ArrayStyle = o.arrayStyle
	}
	if f.Changed("width") {
		cfg.Width = o.width
	}
}
