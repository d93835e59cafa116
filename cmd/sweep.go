// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/issue-sweeper/internal/config"
	"github.com/naka-gawa/issue-sweeper/internal/gateway"
	"github.com/naka-gawa/issue-sweeper/internal/usecase"
)

// Exit codes: 0 success (partial success with reported skips included),
// 1 configuration error, 2 fatal tracker-auth failure before any issue
// was processed, 3 any other runtime failure.
const (
	exitConfigError = 1
	exitAuthError   = 2
	exitRunError    = 3
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Runs one staleness sweep and outputs a summary as JSON",
	Long: `Evaluates every open issue in the target repository against the
configured staleness policy, applies the resulting label/comment/close
actions up to the per-run operation budget, and outputs a run summary in
JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		// Get other flags.
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		configPath, _ := cmd.Flags().GetString("config")
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(exitConfigError)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(exitConfigError)
		}

		// Inject dependencies and run the main business logic.
		tracker, err := gateway.NewGitHubTracker(token, owner, repo, cfg.Policy.StaleLabel, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub tracker: %v\n", err)
			os.Exit(exitConfigError)
		}
		sweeper := usecase.NewSweeper(tracker, cfg.Policy, cfg.Budget, cfg.Workers, logger)

		summary, err := sweeper.Sweep(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sweep issues: %v\n", err)
			if gateway.IsUnauthorized(err) {
				os.Exit(exitAuthError)
			}
			os.Exit(exitRunError)
		}

		// Marshal the summary into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal summary to JSON: %v\n", err)
			os.Exit(exitRunError)
		}

		// Print the final JSON to standard output.
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringP("owner", "o", "", "Target GitHub repository owner (required)")
	sweepCmd.Flags().StringP("repo", "r", "", "Target GitHub repository name (required)")
	sweepCmd.Flags().StringP("config", "c", "sweep.yaml", "Path to the sweep policy file")
	sweepCmd.MarkFlagRequired("owner")
	sweepCmd.MarkFlagRequired("repo")
}
