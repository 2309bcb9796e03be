package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvtree/internal/selector"
)

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions and macros available in --expr",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eval, err := selector.NewEvaluator()
			if err != nil {
				return err
			}
			return writeLine(cmd.OutOrStdout(), strings.Join(eval.Functions(), "\n"))
		},
	}
}
