package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvtree/pkg/logger"
	"github.com/oakwood-commons/kvtree/pkg/settings"
)

func newKeysCmd(common *commonOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [file|-]",
		Short: "List every expandable path key in traversal order",
		Long: `List the path keys of every node that can be expanded, in the order a full
render visits them. Pass them back with --expand to open those nodes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lgr := logger.FromContext(ctx)
			run := settings.FromContextOrDefault(ctx)

			cfg, err := loadConfig(cmd, common)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			engine, err := newEngine(cfg, *lgr)
			if err != nil {
				return err
			}
			v, err := readInput(cmd, args, &run.Input)
			if err != nil {
				return err
			}
			v, err = engine.Prepare(v, common.expr)
			if err != nil {
				return err
			}

			keys := engine.Keys(v)
			lgr.V(1).Info("collected keys", logger.KeysKey, len(keys))
			if len(keys) == 0 {
				return nil
			}
			lines := make([]string, len(keys))
			for i, k := range keys {
				lines[i] = k.String()
			}
			return writeLine(cmd.OutOrStdout(), strings.Join(lines, "\n"))
		},
	}
}
