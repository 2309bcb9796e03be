package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvtree/internal/config"
)

func newConfigCmd(common *commonOptions) *cobra.Command {
	var (
		output      string
		showDefault bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration",
		Long: `Print the configuration kvtree would use: the built-in defaults, merged with
the config file and any flags given. --default prints the annotated default
file, ready to copy to $XDG_CONFIG_HOME/kvtree/config.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showDefault {
				_, err := cmd.OutOrStdout().Write(config.DefaultConfigYAML())
				return err
			}
			cfg, err := loadConfig(cmd, common)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			data, err := cfg.Marshal(output)
			if err != nil {
				return err
			}
			return writeLine(cmd.OutOrStdout(), string(data))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json|toml")
	cmd.Flags().BoolVar(&showDefault, "default", false, "print the built-in default config file")
	return cmd
}
