package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasonkneen/claudelet/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration",
	Long: `Without arguments, displays the effective configuration.
With one argument, displays that key only.

Configuration is read from ~/.config/claudelet/config.yaml, overridden
by .claudelet.yaml in the project tree and CLAUDELET_* environment
variables. Tier-to-model mapping lives in tiers.yaml next to it.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		values := configValues(cfg)
		if len(args) == 1 {
			v, ok := values[args[0]]
			if !ok {
				fmt.Fprintf(os.Stderr, "Unknown key: %s\n", args[0])
				os.Exit(1)
			}
			fmt.Println(v)
			return
		}

		for _, key := range configKeys {
			fmt.Printf("%s: %s\n", key, values[key])
		}
	},
}

// configKeys fixes display order.
var configKeys = []string{
	"anthropic.api_key",
	"anthropic.use_bedrock",
	"anthropic.aws_region",
	"defaults.tier",
	"defaults.max_workers",
	"timeouts.scout",
	"timeouts.builder",
	"timeouts.architect",
	"debug.enabled",
}

func configValues(cfg *config.Config) map[string]string {
	apiKey := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKey = "****"
	}
	return map[string]string{
		"anthropic.api_key":     apiKey,
		"anthropic.use_bedrock": fmt.Sprintf("%t", cfg.Anthropic.UseBedrock),
		"anthropic.aws_region":  cfg.Anthropic.AWSRegion,
		"defaults.tier":         cfg.Defaults.Tier,
		"defaults.max_workers":  fmt.Sprintf("%d", cfg.Defaults.MaxWorkers),
		"timeouts.scout":        cfg.Timeouts.Scout.String(),
		"timeouts.builder":      cfg.Timeouts.Builder.String(),
		"timeouts.architect":    cfg.Timeouts.Architect.String(),
		"debug.enabled":         fmt.Sprintf("%t", cfg.Debug.Enabled),
	}
}
