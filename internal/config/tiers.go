package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// TierSetting holds configuration for a single worker tier loaded from YAML.
type TierSetting struct {
	// Model is the primary model backing the tier.
	Model string `yaml:"model"`
	// FallbackModel is used when the primary model fails.
	FallbackModel string `yaml:"fallback_model"`
	// MaxWorkers caps concurrent workers of this tier.
	MaxWorkers int `yaml:"max_workers"`
	// Timeout is the per-task execution timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// TierSettings holds settings for all worker tiers.
type TierSettings struct {
	Scout     TierSetting `yaml:"scout"`
	Builder   TierSetting `yaml:"builder"`
	Architect TierSetting `yaml:"architect"`
}

// Get returns the setting for the given tier, defaulting to builder.
func (ts *TierSettings) Get(tier models.Tier) TierSetting {
	switch tier {
	case models.TierScout:
		return ts.Scout
	case models.TierArchitect:
		return ts.Architect
	default:
		return ts.Builder
	}
}

// DefaultTierSettings returns the built-in tier settings.
func DefaultTierSettings() *TierSettings {
	return &TierSettings{
		Scout: TierSetting{
			Model:      "claude-3-5-haiku-20241022",
			MaxWorkers: 8,
			Timeout:    2 * time.Minute,
		},
		Builder: TierSetting{
			Model:         "claude-sonnet-4-20250514",
			FallbackModel: "claude-3-7-sonnet-20250219",
			MaxWorkers:    4,
			Timeout:       10 * time.Minute,
		},
		Architect: TierSetting{
			Model:      "claude-opus-4-1-20250805",
			MaxWorkers: 2,
			Timeout:    20 * time.Minute,
		},
	}
}

// LoadTierSettings loads tier settings from tiers.yaml in the user config
// directory, falling back to defaults for missing fields or a missing file.
func LoadTierSettings() (*TierSettings, error) {
	return LoadTierSettingsFromPath(filepath.Join(getUserConfigDir(), "tiers.yaml"))
}

// LoadTierSettingsFromPath loads tier settings from the given YAML file.
func LoadTierSettingsFromPath(path string) (*TierSettings, error) {
	settings := DefaultTierSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("read tier settings: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse tier settings: %w", err)
	}

	fillTierDefaults(&settings.Scout, DefaultTierSettings().Scout)
	fillTierDefaults(&settings.Builder, DefaultTierSettings().Builder)
	fillTierDefaults(&settings.Architect, DefaultTierSettings().Architect)

	return settings, nil
}

// fillTierDefaults backfills zero-valued fields from the defaults.
func fillTierDefaults(ts *TierSetting, def TierSetting) {
	if ts.Model == "" {
		ts.Model = def.Model
	}
	if ts.MaxWorkers <= 0 {
		ts.MaxWorkers = def.MaxWorkers
	}
	if ts.Timeout <= 0 {
		ts.Timeout = def.Timeout
	}
}
