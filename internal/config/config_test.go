package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
anthropic:
  api_key: test-key
defaults:
  tier: scout
  max_workers: 2
timeouts:
  builder: 5m
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api key test-key, got %q", cfg.Anthropic.APIKey)
	}
	if cfg.Defaults.Tier != "scout" {
		t.Errorf("expected tier scout, got %q", cfg.Defaults.Tier)
	}
	if cfg.Defaults.MaxWorkers != 2 {
		t.Errorf("expected max_workers 2, got %d", cfg.Defaults.MaxWorkers)
	}
	if cfg.Timeouts.Builder != 5*time.Minute {
		t.Errorf("expected builder timeout 5m, got %v", cfg.Timeouts.Builder)
	}
	// Defaults still apply to unset fields.
	if cfg.Timeouts.Scout != 2*time.Minute {
		t.Errorf("expected default scout timeout 2m, got %v", cfg.Timeouts.Scout)
	}
}

func TestWatchPathReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	write := func(maxWorkers int) {
		t.Helper()
		content := fmt.Sprintf("defaults:\n  max_workers: %d\n", maxWorkers)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	write(2)

	changed := make(chan *Config, 8)
	WatchPath(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	write(6)

	// A single write can fire more than one filesystem event; keep
	// draining until the reloaded value shows up.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Defaults.MaxWorkers == 6 {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("CLAUDELET_TEST_SECRET", "sk-12345")

	got := expandEnv("${CLAUDELET_TEST_SECRET}")
	if got != "sk-12345" {
		t.Errorf("expected expanded secret, got %q", got)
	}

	// Plain values pass through untouched.
	if expandEnv("literal") != "literal" {
		t.Error("expected literal value to pass through")
	}

	// Unknown variables expand to empty.
	if expandEnv("${CLAUDELET_TEST_MISSING_VAR}") != "" {
		t.Error("expected unknown variable to expand to empty string")
	}
}

func TestLoadTierSettingsFromPathMissing(t *testing.T) {
	settings, err := LoadTierSettingsFromPath(filepath.Join(t.TempDir(), "tiers.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}

	if settings.Builder.Model == "" {
		t.Error("expected default builder model")
	}
	if settings.Scout.MaxWorkers != 8 {
		t.Errorf("expected default scout max_workers 8, got %d", settings.Scout.MaxWorkers)
	}
}

func TestLoadTierSettingsFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiers.yaml")

	content := `
scout:
  model: custom-haiku
architect:
  max_workers: 1
  timeout: 30m
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write tiers: %v", err)
	}

	settings, err := LoadTierSettingsFromPath(path)
	if err != nil {
		t.Fatalf("LoadTierSettingsFromPath: %v", err)
	}

	if settings.Scout.Model != "custom-haiku" {
		t.Errorf("expected custom scout model, got %q", settings.Scout.Model)
	}
	// Unset fields backfill from defaults.
	if settings.Scout.MaxWorkers != 8 {
		t.Errorf("expected backfilled scout max_workers, got %d", settings.Scout.MaxWorkers)
	}
	if settings.Architect.MaxWorkers != 1 {
		t.Errorf("expected architect max_workers 1, got %d", settings.Architect.MaxWorkers)
	}
	if settings.Architect.Timeout != 30*time.Minute {
		t.Errorf("expected architect timeout 30m, got %v", settings.Architect.Timeout)
	}
	if settings.Architect.Model == "" {
		t.Error("expected backfilled architect model")
	}
}
