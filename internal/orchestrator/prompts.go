package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// Prompt construction for the three model-facing roles: the planner that
// decomposes a request, the workers that execute sub-tasks, and the
// summarizer that aggregates results. Prompts are plain strings; the
// session layer owns system prompts and model selection.

const plannerSystemHint = `You are a planning assistant inside a coding agent. Decompose the user's request into independent sub-tasks with explicit dependencies. Respond with a single JSON object and nothing else:

{
  "tasks": [
    {
      "taskId": "short-stable-id",
      "description": "what the worker should do",
      "suggestedTier": "scout|builder|architect",
      "dependsOn": ["taskId", ...],
      "estimatedComplexity": 1
    }
  ],
  "summary": "one line describing the overall approach",
  "clarifyingQuestions": ["optional questions for the user"]
}

Rules:
- taskId values must be unique within the plan.
- dependsOn may only reference taskId values in this plan.
- estimatedComplexity is an integer from 1 to 10.
- Prefer few, meaningful tasks over many trivial ones.`

// planningPrompt builds the decomposition request sent to the planner.
func planningPrompt(task models.Task, analysis *models.TaskAnalysis) string {
	var b strings.Builder

	b.WriteString(plannerSystemHint)
	b.WriteString("\n\nRequest:\n")
	b.WriteString(task.Content)

	fmt.Fprintf(&b, "\n\nTriage: complexity %d/10, intent %s, priority %s.",
		analysis.Complexity, analysis.Intent, priorityOrDefault(task.Priority))
	if len(analysis.RequiredCapabilities) > 0 {
		fmt.Fprintf(&b, " Required capabilities: %s.", strings.Join(analysis.RequiredCapabilities, ", "))
	}

	writeTaskContext(&b, task.Context)

	return b.String()
}

// workerPrompt builds the execution prompt for one planned sub-task.
// The original request is included so workers keep the overall goal in
// view while working on their slice.
func workerPrompt(task models.Task, planned models.PlannedTask) string {
	var b strings.Builder

	b.WriteString(planned.Description)

	if planned.Description != task.Content {
		b.WriteString("\n\nThis is one part of the overall request:\n")
		b.WriteString(task.Content)
	}

	if task.Priority == models.PriorityUrgent {
		b.WriteString("\n\nThis request is urgent; prefer the most direct working solution.")
	}

	writeTaskContext(&b, task.Context)

	return b.String()
}

// summaryPrompt builds the aggregation prompt from settled results.
// Results are embedded as JSON so the summarizer sees failures verbatim.
func summaryPrompt(task models.Task, plan *models.Plan, results []models.TaskResult) string {
	var b strings.Builder

	b.WriteString("You coordinated several workers on this request:\n")
	b.WriteString(task.Content)

	if plan != nil && plan.Summary != "" {
		b.WriteString("\n\nPlan: ")
		b.WriteString(plan.Summary)
	}

	b.WriteString("\n\nWorker results (JSON):\n")
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		// Marshal of these value types cannot realistically fail; degrade
		// to the fmt rendering rather than lose the results.
		fmt.Fprintf(&b, "%+v", results)
	} else {
		b.Write(payload)
	}

	b.WriteString("\n\nWrite the final response to the user. Synthesize the outputs into one coherent answer. If any task failed, state plainly what failed and why, and propose a concrete next step for it. Do not mention workers or tasks by ID.")

	return b.String()
}

// refinePrompt builds the follow-up question prompt for AskArchitect.
func refinePrompt(task models.Task, plan *models.Plan, question string) string {
	var b strings.Builder

	b.WriteString("You are advising on this request:\n")
	b.WriteString(task.Content)

	if plan != nil && len(plan.Tasks) > 0 {
		b.WriteString("\n\nCurrent plan:\n")
		for _, t := range plan.Tasks {
			fmt.Fprintf(&b, "- %s: %s", t.TaskID, t.Description)
			if len(t.DependsOn) > 0 {
				fmt.Fprintf(&b, " (after %s)", strings.Join(t.DependsOn, ", "))
			}
			b.WriteString("\n")
		}
		if plan.Summary != "" {
			b.WriteString("Approach: ")
			b.WriteString(plan.Summary)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuestion:\n")
	b.WriteString(question)

	return b.String()
}

// writeTaskContext appends attached files, prior turns, and constraints.
func writeTaskContext(b *strings.Builder, taskCtx *models.TaskContext) {
	if taskCtx == nil {
		return
	}

	if len(taskCtx.Files) > 0 {
		b.WriteString("\n\nRelevant files:\n")
		for _, f := range taskCtx.Files {
			fmt.Fprintf(b, "- %s\n", f)
		}
	}
	if len(taskCtx.PriorTurns) > 0 {
		b.WriteString("\nEarlier conversation:\n")
		for _, turn := range taskCtx.PriorTurns {
			fmt.Fprintf(b, "> %s\n", turn)
		}
	}
	if len(taskCtx.Constraints) > 0 {
		b.WriteString("\nConstraints:\n")
		for _, c := range taskCtx.Constraints {
			fmt.Fprintf(b, "- %s\n", c)
		}
	}
}

func priorityOrDefault(p models.Priority) models.Priority {
	if !p.Valid() {
		return models.PriorityNormal
	}
	return p
}
