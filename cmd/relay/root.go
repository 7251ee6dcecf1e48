package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
)

var (
	// Global flags
	cfgFile  string
	envFiles []string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay - chat completion forwarding service",
	Long: `Relay forwards chat completion requests to the OpenAI API.

Clients send a prompt or a list of messages; the relay fills in generation
defaults, authenticates with a server-side credential and returns the
upstream payload with a meta block. The credential never reaches the client.

The credential is resolved on every request from, in order:
  - a mounted secrets directory (secrets.file)
  - the environment variable named by upstream.api_key_env
  - upstream.api_key in the configuration file`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status derived from the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
