package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// summarizerThreshold is the analysis complexity at or above which even a
// single-task context gets a model-written summary.
const summarizerThreshold = 6

// canceledOutput is the literal final response for interrupted contexts.
const canceledOutput = "Canceled."

// aggregate produces the final response for a settled context snapshot.
// Simple single-task contexts skip the summarizer and return the worker
// output verbatim; everything else runs a high-capability summarizer
// over the settled results, falling back to deterministic formatting if
// the summarizer itself fails.
func (c *Coordinator) aggregate(ctx context.Context, octx *OrchestrationContext) string {
	if octx.Status == StatusCanceled {
		return canceledOutput
	}

	results := octx.orderedResults()

	needsSummary := len(octx.TaskIDs) > 1
	if octx.Analysis != nil && octx.Analysis.Complexity >= summarizerThreshold {
		needsSummary = true
	}

	if needsSummary {
		if summary, ok := c.summarize(ctx, octx, results); ok {
			return summary
		}
	}

	return formatResults(octx.Plan, results)
}

// summarize runs a high-capability worker over the settled results.
// Returns ok=false when spawning or execution fails; the caller falls
// back to deterministic formatting.
func (c *Coordinator) summarize(ctx context.Context, octx *OrchestrationContext, results []models.TaskResult) (string, bool) {
	w, err := c.pool.Spawn(ctx, models.TierArchitect)
	if err != nil {
		c.warn(octx.ID, fmt.Sprintf("summarizer spawn failed, using fallback formatting: %v", err))
		return "", false
	}

	c.lock()
	if live, ok := c.contexts[octx.ID]; ok {
		live.WorkerIDs = append(live.WorkerIDs, w.ID)
	}
	c.unlock()

	output, err := c.pool.Execute(ctx, octx.ID, w.ID, "summarize", summaryPrompt(octx.Task, octx.Plan, results))
	if err != nil {
		c.warn(octx.ID, fmt.Sprintf("summarizer failed, using fallback formatting: %v", err))
		return "", false
	}
	return output, true
}

// formatResults deterministically renders settled results. A lone result
// under a plan with no summary passes through verbatim, so trivial
// requests read as a direct answer rather than a report.
func formatResults(plan *models.Plan, results []models.TaskResult) string {
	if len(results) == 0 {
		return ""
	}

	summary := ""
	if plan != nil {
		summary = plan.Summary
	}

	if len(results) == 1 && summary == "" {
		r := results[0]
		if r.Failed() {
			return fmt.Sprintf("Task %s failed: %s", r.TaskID, r.Error)
		}
		return r.Output
	}

	var b strings.Builder
	if summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	for _, r := range results {
		fmt.Fprintf(&b, "### %s (%s)\n", r.TaskID, r.Tier)
		if r.Failed() {
			fmt.Fprintf(&b, "Failed: %s\n\n", r.Error)
		} else {
			b.WriteString(r.Output)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
