package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "claudelet",
	Short: "Multi-agent task orchestration engine",
	Long: `Claudelet routes coding requests through a tiered worker engine:
triage scores each request, complex work is decomposed into a dependency
plan by a high-capability planner, sub-tasks fan out to model-backed
workers, and the settled results are aggregated into one response.

Run a request:
  claudelet run "refactor the retry logic in internal/httpx"

Inspect routing without spending tokens:
  claudelet triage "migrate the billing service to the new queue"`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(triageCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
