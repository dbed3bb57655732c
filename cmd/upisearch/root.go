package main

import (
	"github.com/spf13/cobra"

	"github.com/sozercan/upi-search/internal/metrics"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "upisearch",
	Short: "UPI Search - natural-language search over graph databases",
	Long: `UPI Search turns a natural-language question into an AQL, Cypher or
GraphQL query with an LLM, runs it against the configured backend and shows
ranked results with suggested refinements.

Without a subcommand it starts an interactive search session.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		metrics.Register()
	},
	RunE: runSearch,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file (default config.ini)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
}
