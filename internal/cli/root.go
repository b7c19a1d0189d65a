// Package cli wires the splitweek commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "splitweek",
	Short: "Weekly settlement engine for shared spaces",
	Long: `splitweek tracks itemized receipts for shared living spaces, aggregates
them into weekly settlement periods and closes each week into an immutable
balance snapshot.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "Path to the TOML config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
