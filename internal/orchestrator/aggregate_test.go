package orchestrator

import (
	"strings"
	"testing"
	"time"

	"github.com/jasonkneen/claudelet/pkg/models"
)

func completedResult(taskID, output string) models.TaskResult {
	return models.TaskResult{
		TaskID:     taskID,
		WorkerID:   "w-" + taskID,
		Tier:       models.TierBuilder,
		Status:     models.ResultCompleted,
		Output:     output,
		FinishedAt: time.Now(),
	}
}

func TestFormatResultsSinglePassthrough(t *testing.T) {
	got := formatResults(nil, []models.TaskResult{completedResult("main", "the answer")})
	if got != "the answer" {
		t.Errorf("expected verbatim output, got %q", got)
	}

	// A plan without a summary behaves the same as no plan.
	plan := &models.Plan{Tasks: []models.PlannedTask{{TaskID: "main"}}}
	got = formatResults(plan, []models.TaskResult{completedResult("main", "the answer")})
	if got != "the answer" {
		t.Errorf("expected verbatim output with summaryless plan, got %q", got)
	}
}

func TestFormatResultsSingleFailure(t *testing.T) {
	r := models.TaskResult{
		TaskID: "main",
		Status: models.ResultFailed,
		Error:  "model unavailable",
	}
	got := formatResults(nil, []models.TaskResult{r})
	if !strings.Contains(got, "main") || !strings.Contains(got, "model unavailable") {
		t.Errorf("expected failure rendering, got %q", got)
	}
}

func TestFormatResultsMultiTask(t *testing.T) {
	plan := &models.Plan{Summary: "split into reader and writer"}
	results := []models.TaskResult{
		completedResult("reader", "reader done"),
		{TaskID: "writer", Tier: models.TierBuilder, Status: models.ResultFailed, Error: "disk full"},
	}

	got := formatResults(plan, results)

	if !strings.HasPrefix(got, "split into reader and writer") {
		t.Errorf("expected summary first, got %q", got)
	}
	for _, want := range []string{"### reader", "reader done", "### writer", "disk full"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
	// Sections follow plan order.
	if strings.Index(got, "### reader") > strings.Index(got, "### writer") {
		t.Error("expected reader section before writer section")
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	if got := formatResults(nil, nil); got != "" {
		t.Errorf("expected empty output for no results, got %q", got)
	}
}

func TestFormatResultsSingleWithSummary(t *testing.T) {
	// A plan summary forces the report form even for one result.
	plan := &models.Plan{Summary: "single step"}
	got := formatResults(plan, []models.TaskResult{completedResult("main", "body")})

	if got == "body" {
		t.Error("expected report form, got verbatim passthrough")
	}
	if !strings.Contains(got, "single step") || !strings.Contains(got, "body") {
		t.Errorf("expected summary and body, got %q", got)
	}
}
