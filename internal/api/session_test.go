package api

import (
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/jasonkneen/claudelet/pkg/models"
)

func TestTierModelsMapping(t *testing.T) {
	tm := DefaultTierModels()

	if got := tm.Model(models.TierScout); got != tm.Scout {
		t.Errorf("scout model = %q, want %q", got, tm.Scout)
	}
	if got := tm.Model(models.TierArchitect); got != tm.Architect {
		t.Errorf("architect model = %q, want %q", got, tm.Architect)
	}
	if got := tm.Model(models.TierBuilder); got != tm.Builder {
		t.Errorf("builder model = %q, want %q", got, tm.Builder)
	}
	// Unknown tiers fall back to the builder model.
	if got := tm.Model(models.Tier("mystery")); got != tm.Builder {
		t.Errorf("unknown tier model = %q, want builder %q", got, tm.Builder)
	}
}

func TestTierTimeoutsFor(t *testing.T) {
	tt := TierTimeouts{
		Scout:     2 * time.Minute,
		Builder:   10 * time.Minute,
		Architect: 20 * time.Minute,
	}

	if got := tt.For(models.TierScout); got != tt.Scout {
		t.Errorf("scout timeout = %v, want %v", got, tt.Scout)
	}
	if got := tt.For(models.TierArchitect); got != tt.Architect {
		t.Errorf("architect timeout = %v, want %v", got, tt.Architect)
	}
	if got := tt.For(models.Tier("mystery")); got != tt.Builder {
		t.Errorf("unknown tier timeout = %v, want builder %v", got, tt.Builder)
	}

	var zero TierTimeouts
	if got := zero.For(models.TierScout); got != 0 {
		t.Errorf("zero timeouts: got %v, want 0", got)
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	got := translateModelForBedrock(anthropic.ModelClaudeSonnet4_20250514)
	want := anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0")
	if got != want {
		t.Errorf("translated = %q, want %q", got, want)
	}

	// Already-translated or custom names pass through untouched.
	custom := anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("bedrock-format model rewritten to %q", got)
	}
	unknown := anthropic.Model("some-custom-model")
	if got := translateModelForBedrock(unknown); got != unknown {
		t.Errorf("custom model rewritten to %q", got)
	}
}

func TestModelRates(t *testing.T) {
	haikuIn, haikuOut := modelRates(anthropic.ModelClaude3_5Haiku20241022)
	sonnetIn, sonnetOut := modelRates(anthropic.ModelClaudeSonnet4_20250514)
	opusIn, opusOut := modelRates(anthropic.ModelClaudeOpus4_1_20250805)

	if !(haikuIn < sonnetIn && sonnetIn < opusIn) {
		t.Errorf("input rates not ordered: haiku %f, sonnet %f, opus %f", haikuIn, sonnetIn, opusIn)
	}
	if !(haikuOut < sonnetOut && sonnetOut < opusOut) {
		t.Errorf("output rates not ordered: haiku %f, sonnet %f, opus %f", haikuOut, sonnetOut, opusOut)
	}

	// Bedrock-format IDs price the same as their direct counterparts.
	bIn, bOut := modelRates(translateModelForBedrock(anthropic.ModelClaudeOpus4_1_20250805))
	if bIn != opusIn || bOut != opusOut {
		t.Errorf("bedrock opus rates (%f, %f) differ from direct (%f, %f)", bIn, bOut, opusIn, opusOut)
	}

	// Unknown models get the sonnet-class default.
	dIn, dOut := modelRates(anthropic.Model("some-custom-model"))
	if dIn != sonnetIn || dOut != sonnetOut {
		t.Errorf("default rates = (%f, %f), want sonnet (%f, %f)", dIn, dOut, sonnetIn, sonnetOut)
	}
}

func TestTokenTracker(t *testing.T) {
	tr := NewTokenTracker()
	tr.Add(anthropic.ModelClaude3_5Haiku20241022, 1000, 500)
	tr.Add(anthropic.ModelClaudeSonnet4_20250514, 2000, 1500)

	in, out := tr.Total()
	if in != 3000 || out != 2000 {
		t.Errorf("totals = (%d, %d), want (3000, 2000)", in, out)
	}
	if tr.Calls() != 2 {
		t.Errorf("calls = %d, want 2", tr.Calls())
	}
	if cost := tr.Cost(); cost <= 0 {
		t.Errorf("cost = %f, want > 0", cost)
	}

	// Identical usage on a pricier model accrues a higher cost.
	cheap := NewTokenTracker()
	cheap.Add(anthropic.ModelClaude3_5Haiku20241022, 1000, 1000)
	pricey := NewTokenTracker()
	pricey.Add(anthropic.ModelClaudeOpus4_1_20250805, 1000, 1000)
	if cheap.Cost() >= pricey.Cost() {
		t.Errorf("haiku cost %f not below opus cost %f", cheap.Cost(), pricey.Cost())
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("expected error when no API key is available")
	} else if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("error %q does not mention the env var", err)
	}
}
