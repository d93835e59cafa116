// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "issue-sweeper",
	Short: "A CLI tool to manage stale issues in a GitHub repository.",
	Long: `issue-sweeper evaluates every open issue in a GitHub repository
against a staleness policy: issues with no recent activity are labeled
stale, stale issues that see new activity are unlabeled, and issues that
stay stale long enough are closed. Pull requests are never touched.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
