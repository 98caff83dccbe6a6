package orchestrator

import (
	"reflect"
	"testing"

	"github.com/jasonkneen/claudelet/pkg/models"
)

const samplePlanJSON = `{
  "tasks": [
    {"taskId": "a", "description": "do a", "suggestedTier": "scout", "dependsOn": [], "estimatedComplexity": 2},
    {"taskId": "b", "description": "do b", "suggestedTier": "builder", "dependsOn": ["a"], "estimatedComplexity": 4}
  ],
  "summary": "a then b"
}`

func TestParsePlanDirectJSON(t *testing.T) {
	plan := ParsePlan(samplePlanJSON, "fallback", models.TierBuilder)

	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(plan.Tasks))
	}
	if plan.Tasks[0].TaskID != "a" || plan.Tasks[1].TaskID != "b" {
		t.Errorf("unexpected task ids: %v", plan.TaskIDs())
	}
	if plan.Summary != "a then b" {
		t.Errorf("expected summary, got %q", plan.Summary)
	}
}

func TestParsePlanFencedBlock(t *testing.T) {
	response := "Here is the plan:\n\n```json\n" + samplePlanJSON + "\n```\n\nLet me know."

	plan := ParsePlan(response, "fallback", models.TierBuilder)
	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks from fenced block, got %d", len(plan.Tasks))
	}
}

func TestParsePlanEmbeddedObject(t *testing.T) {
	response := "I analyzed the request and decided on this decomposition: " +
		samplePlanJSON + " which should cover everything."

	plan := ParsePlan(response, "fallback", models.TierBuilder)
	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks from brace scan, got %d", len(plan.Tasks))
	}
}

// All three extraction strategies must agree on the same payload.
func TestParsePlanStrategiesAgree(t *testing.T) {
	direct := ParsePlan(samplePlanJSON, "fb", models.TierBuilder)
	fenced := ParsePlan("```json\n"+samplePlanJSON+"\n```", "fb", models.TierBuilder)
	embedded := ParsePlan("prose before "+samplePlanJSON+" prose after", "fb", models.TierBuilder)

	if !reflect.DeepEqual(direct, fenced) {
		t.Errorf("direct and fenced disagree:\n%+v\n%+v", direct, fenced)
	}
	if !reflect.DeepEqual(direct, embedded) {
		t.Errorf("direct and embedded disagree:\n%+v\n%+v", direct, embedded)
	}
}

func TestParsePlanMalformedFallsBack(t *testing.T) {
	cases := []string{
		"",
		"I could not produce a plan, sorry.",
		"{not json at all",
		"```json\n{broken\n```",
		`{"tasks": []}`,
		`{"tasks": [{"description": "no id"}]}`,
	}

	want := &models.Plan{
		Tasks: []models.PlannedTask{{
			TaskID:              "main",
			Description:         "original request",
			SuggestedTier:       models.TierBuilder,
			DependsOn:           []string{},
			EstimatedComplexity: 5,
		}},
	}

	for _, response := range cases {
		got := ParsePlan(response, "original request", models.TierBuilder)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("response %q: expected default plan, got %+v", response, got)
		}
	}
}

func TestParsePlanRejectsCycles(t *testing.T) {
	cyclic := `{"tasks": [
		{"taskId": "a", "description": "a", "dependsOn": ["b"]},
		{"taskId": "b", "description": "b", "dependsOn": ["a"]}
	]}`

	plan := ParsePlan(cyclic, "fallback", models.TierScout)
	if len(plan.Tasks) != 1 || plan.Tasks[0].TaskID != "main" {
		t.Errorf("expected default plan for cyclic input, got %+v", plan)
	}
}

func TestParsePlanNormalizes(t *testing.T) {
	raw := `{"tasks": [
		{"taskId": "a", "description": "a", "dependsOn": ["a", "ghost"], "estimatedComplexity": 99},
		{"taskId": "b", "description": "b", "suggestedTier": "bogus"}
	]}`

	plan := ParsePlan(raw, "fallback", models.TierScout)
	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(plan.Tasks))
	}

	// Self and unknown dependencies are dropped.
	if len(plan.Tasks[0].DependsOn) != 0 {
		t.Errorf("expected dependencies pruned, got %v", plan.Tasks[0].DependsOn)
	}
	if plan.Tasks[0].EstimatedComplexity != models.MaxComplexity {
		t.Errorf("expected complexity clamped to %d, got %d", models.MaxComplexity, plan.Tasks[0].EstimatedComplexity)
	}
	// Unknown tiers backfill from the analyzer's suggestion.
	if plan.Tasks[1].SuggestedTier != models.TierScout {
		t.Errorf("expected backfilled tier scout, got %q", plan.Tasks[1].SuggestedTier)
	}
	if plan.Tasks[1].EstimatedComplexity != 5 {
		t.Errorf("expected default complexity 5, got %d", plan.Tasks[1].EstimatedComplexity)
	}
}

func TestExtractJSONObjectUnicodeEscapes(t *testing.T) {
	// Braces inside string literals, escaped quotes, and unicode escape
	// sequences must not confuse the depth scan.
	input := `noise {"tasks": [{"taskId": "a", "description": "brace } and \"}\" inside"}]} trailing`

	got := extractJSONObject(input)
	want := `{"tasks": [{"taskId": "a", "description": "brace } and \"}\" inside"}]}`
	if got != want {
		t.Errorf("extractJSONObject:\n got %q\nwant %q", got, want)
	}

	// A unicode-escaped brace stays inside its string literal too.
	uni := `{"description": "closing \u007d escaped"} extra`
	if got := extractJSONObject(uni); got != `{"description": "closing \u007d escaped"}` {
		t.Errorf("unicode escape: got %q", got)
	}
}

func TestExtractJSONObjectNone(t *testing.T) {
	if got := extractJSONObject("no objects here, just } a stray brace"); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}
