// Command meetnotes runs the meeting analyzer from the terminal, without the
// HTTP server or a database.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/meeting-insights/internal/config"
	"github.com/bryanwahyu/meeting-insights/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meetnotes",
		Short: "Turn raw meeting notes into a summary, key points and action items",
		Long: `meetnotes analyzes meeting notes with the configured AI provider, or with
the built-in heuristic analyzer when no API key is set.

Configuration is read the same way as the API server: config.yaml, then .env,
then environment variables (AI_PROVIDER, AI_API_KEY, AI_MODEL, ...).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "config.yaml", "path to config file")
	root.PersistentFlags().String("log-level", "warn", "log level written to stderr")

	root.AddCommand(newAnalyzeCmd(), newValidateCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cmd *cobra.Command) logging.Config {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.Config{
		Level:       level,
		ServiceName: "meetnotes",
		Output:      cmd.ErrOrStderr(),
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
