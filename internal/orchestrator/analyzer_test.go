package orchestrator

import (
	"testing"

	"github.com/jasonkneen/claudelet/pkg/models"
)

func TestAnalyzeGreeting(t *testing.T) {
	a := NewTaskAnalyzer()

	for _, content := range []string{"Hello", "hi there", "thanks!", "ok", "good morning"} {
		got := a.Analyze(content, nil)

		if got.Complexity != models.MinComplexity {
			t.Errorf("%q: expected complexity %d, got %d", content, models.MinComplexity, got.Complexity)
		}
		if got.Intent != models.IntentConversational {
			t.Errorf("%q: expected conversational intent, got %s", content, got.Intent)
		}
		if got.SuggestedTier != models.TierScout {
			t.Errorf("%q: expected scout tier, got %s", content, got.SuggestedTier)
		}
		if got.NeedsPlanning {
			t.Errorf("%q: greeting should never need planning", content)
		}
	}
}

func TestAnalyzeIntents(t *testing.T) {
	a := NewTaskAnalyzer()

	tests := []struct {
		content string
		intent  models.Intent
		tier    models.Tier
	}{
		{"search for the config loader", models.IntentLookup, models.TierScout},
		{"list all handlers in the api package", models.IntentLookup, models.TierScout},
		{"fix the panic in the websocket handler", models.IntentDebug, models.TierBuilder},
		{"refactor the session layer to simplify retries", models.IntentRefactor, models.TierBuilder},
		{"design the architecture for the new event pipeline", models.IntentArchitecture, models.TierArchitect},
		{"add pagination to the users endpoint", models.IntentImplementation, models.TierBuilder},
	}

	for _, tt := range tests {
		got := a.Analyze(tt.content, nil)
		if got.Intent != tt.intent {
			t.Errorf("%q: expected intent %s, got %s", tt.content, tt.intent, got.Intent)
		}
		if got.SuggestedTier != tt.tier {
			t.Errorf("%q: expected tier %s, got %s", tt.content, tt.tier, got.SuggestedTier)
		}
	}
}

func TestAnalyzeComplexityBounds(t *testing.T) {
	a := NewTaskAnalyzer()

	heavy := "plan the architecture for a full platform migration and security audit across the whole codebase"
	got := a.Analyze(heavy, &models.TaskContext{
		Files:       []string{"a.go", "b.go", "c.go", "d.go", "e.go"},
		Constraints: []string{"zero downtime", "backwards compatible", "audited"},
	})

	if got.Complexity > models.MaxComplexity {
		t.Errorf("complexity %d exceeds maximum %d", got.Complexity, models.MaxComplexity)
	}
	if got.Complexity < planningThreshold {
		t.Errorf("expected heavy request to score at least %d, got %d", planningThreshold, got.Complexity)
	}
	if !got.NeedsPlanning {
		t.Error("expected heavy request to need planning")
	}
	if got.SuggestedTier != models.TierArchitect {
		t.Errorf("expected architect tier, got %s", got.SuggestedTier)
	}
	// Tier must be set even when planning is recommended.
	if !got.SuggestedTier.Valid() {
		t.Error("suggested tier must always be a valid fallback")
	}
}

func TestAnalyzeContextAddsComplexity(t *testing.T) {
	a := NewTaskAnalyzer()
	content := "add pagination to the users endpoint"

	bare := a.Analyze(content, nil)
	loaded := a.Analyze(content, &models.TaskContext{
		Files:       []string{"users.go", "db.go"},
		Constraints: []string{"keep the response shape"},
	})

	if loaded.Complexity <= bare.Complexity {
		t.Errorf("attached context should raise complexity: bare %d, loaded %d", bare.Complexity, loaded.Complexity)
	}
}

func TestAnalyzeLookupWithHeavyContextEscalates(t *testing.T) {
	a := NewTaskAnalyzer()

	got := a.Analyze("find every caller of the retry helper", &models.TaskContext{
		Files:       []string{"a.go", "b.go", "c.go", "d.go"},
		Constraints: []string{"include tests", "group by package", "skip vendored code"},
	})

	if got.SuggestedTier != models.TierBuilder {
		t.Errorf("expected heavy lookup to escalate to builder, got %s", got.SuggestedTier)
	}
}
