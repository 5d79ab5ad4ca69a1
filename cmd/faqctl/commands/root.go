package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "faqctl",
	Short: "Inspect and test the support bot FAQ configuration",
	Long: `faqctl validates FAQ configuration files, runs questions through the
matcher the same way the chat endpoint does, and bootstraps admin accounts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			slog.Debug("No .env file found")
		}

		var out io.Writer = io.Discard
		if verbose {
			out = os.Stderr
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})))

		if configPath == "" {
			configPath = os.Getenv("FAQ_CONFIG_PATH")
		}
		if configPath == "" {
			configPath = "faq_config.json"
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "FAQ config file (default $FAQ_CONFIG_PATH or faq_config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
