package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/telemetry/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Load the configuration file, dotenv files and RELAY_* overrides, validate
the result and print it as YAML. The upstream API key is masked.

Examples:
  relay config
  relay config --config /etc/relay/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile, envFiles...)
		if err != nil {
			return cli.NewConfigError("", err.Error())
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// printConfig writes cfg as YAML with the API key masked.
func printConfig(w io.Writer, cfg *config.Config) error {
	masked := *cfg
	if masked.Upstream.APIKey != "" {
		masked.Upstream.APIKey = logging.RedactAPIKey(masked.Upstream.APIKey)
	}
	if err := cli.NewFormatter(cli.FormatYAML).FormatTo(w, &masked); err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	return nil
}
