package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonkneen/claudelet/internal/orchestrator"
)

var triageCmd = &cobra.Command{
	Use:   "triage [request]",
	Short: "Score a request without executing it",
	Long: `Triage runs the analyzer over a request and prints the routing
decision: complexity, intent, suggested tier, and whether the engine
would decompose it with a planner. No model calls are made.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		request := strings.Join(args, " ")
		analysis := orchestrator.NewTaskAnalyzer().Analyze(request, nil)

		fmt.Printf("complexity:     %d/10\n", analysis.Complexity)
		fmt.Printf("intent:         %s\n", analysis.Intent)
		fmt.Printf("suggested tier: %s\n", analysis.SuggestedTier)
		fmt.Printf("needs planning: %t\n", analysis.NeedsPlanning)
		if len(analysis.RequiredCapabilities) > 0 {
			fmt.Printf("capabilities:   %s\n", strings.Join(analysis.RequiredCapabilities, ", "))
		}
	},
}
