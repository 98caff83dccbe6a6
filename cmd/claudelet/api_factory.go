package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/jasonkneen/claudelet/internal/api"
	"github.com/jasonkneen/claudelet/internal/config"
)

// buildFactory creates the API-backed session factory from the loaded
// configuration: provider transport from config.yaml, tier-to-model
// mapping from tiers.yaml.
func buildFactory(cfg *config.Config) (*api.SessionFactory, error) {
	client, err := api.NewClient(api.ClientConfig{
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	settings, err := config.LoadTierSettings()
	if err != nil {
		return nil, fmt.Errorf("load tier settings: %w", err)
	}

	tiers := api.TierModels{
		Scout:     anthropic.Model(settings.Scout.Model),
		Builder:   anthropic.Model(settings.Builder.Model),
		Architect: anthropic.Model(settings.Architect.Model),
	}
	timeouts := api.TierTimeouts{
		Scout:     settings.Scout.Timeout,
		Builder:   settings.Builder.Timeout,
		Architect: settings.Architect.Timeout,
	}

	return api.NewSessionFactory(client, tiers).WithTimeouts(timeouts), nil
}
