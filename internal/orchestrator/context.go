package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// ContextStatus is the lifecycle state of one orchestration context.
type ContextStatus string

const (
	// StatusIdle is the initial state before triage begins.
	StatusIdle ContextStatus = "idle"
	// StatusTriaging indicates the analyzer is scoring the request.
	StatusTriaging ContextStatus = "triaging"
	// StatusPlanning indicates a planner worker is decomposing the request.
	StatusPlanning ContextStatus = "planning"
	// StatusDelegating indicates workers are being assigned to tasks.
	StatusDelegating ContextStatus = "delegating"
	// StatusRunning indicates sub-tasks are executing.
	StatusRunning ContextStatus = "running"
	// StatusComplete indicates every sub-task settled and none failed.
	StatusComplete ContextStatus = "complete"
	// StatusFailed indicates at least one sub-task settled as failed.
	StatusFailed ContextStatus = "failed"
	// StatusCanceled indicates the context was interrupted.
	StatusCanceled ContextStatus = "canceled"
)

// Terminal returns true once the context can no longer make progress.
func (s ContextStatus) Terminal() bool {
	switch s {
	case StatusComplete, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// statusRank orders statuses for the forward-only transition check.
// Terminal statuses share the top rank; canceled is reachable from
// anywhere and is enforced separately.
var statusRank = map[ContextStatus]int{
	StatusIdle:       0,
	StatusTriaging:   1,
	StatusPlanning:   2,
	StatusDelegating: 3,
	StatusRunning:    4,
	StatusComplete:   5,
	StatusFailed:     5,
	StatusCanceled:   5,
}

// OrchestrationContext tracks one request through the engine.
// All fields are guarded by the coordinator's lock; callers receive
// snapshot copies from GetContext, never the live struct.
type OrchestrationContext struct {
	// ID is the engine-assigned context identifier.
	ID string `json:"id"`
	// Task is the original request, immutable after triage.
	Task models.Task `json:"task"`
	// Status is the current lifecycle state.
	Status ContextStatus `json:"status"`
	// Analysis is the triage decision. Set once, never mutated.
	Analysis *models.TaskAnalysis `json:"analysis,omitempty"`
	// Plan is the decomposition driving delegation, if one was produced.
	Plan *models.Plan `json:"plan,omitempty"`
	// TaskIDs lists every sub-task tracked by this context, in plan order.
	TaskIDs []string `json:"task_ids,omitempty"`
	// WorkerIDs lists every worker spawned for this context, including
	// the planner and summarizer.
	WorkerIDs []string `json:"worker_ids,omitempty"`
	// Results maps task ID to its settled result. Write-once per key.
	Results map[string]models.TaskResult `json:"results,omitempty"`
	// CreatedAt is when triage began.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the context reached a terminal status.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// cancel stops the delegation run for this context.
	cancel context.CancelFunc
	// done is closed exactly once, at the terminal transition.
	done     chan struct{}
	doneOnce sync.Once
}

// snapshot returns a copy safe to hand to callers. Slices and the
// results map are copied; Analysis and Plan are shared because they are
// never mutated after being set.
func (oc *OrchestrationContext) snapshot() *OrchestrationContext {
	cp := &OrchestrationContext{
		ID:          oc.ID,
		Task:        oc.Task,
		Status:      oc.Status,
		Analysis:    oc.Analysis,
		Plan:        oc.Plan,
		CreatedAt:   oc.CreatedAt,
		CompletedAt: oc.CompletedAt,
	}
	cp.TaskIDs = append([]string(nil), oc.TaskIDs...)
	cp.WorkerIDs = append([]string(nil), oc.WorkerIDs...)
	if oc.Results != nil {
		cp.Results = make(map[string]models.TaskResult, len(oc.Results))
		for k, v := range oc.Results {
			cp.Results[k] = v
		}
	}
	return cp
}

// markDone closes the done channel. Idempotent.
func (oc *OrchestrationContext) markDone() {
	oc.doneOnce.Do(func() { close(oc.done) })
}

// orderedResults returns settled results in TaskIDs order, skipping
// tasks that never settled.
func (oc *OrchestrationContext) orderedResults() []models.TaskResult {
	out := make([]models.TaskResult, 0, len(oc.Results))
	for _, id := range oc.TaskIDs {
		if r, ok := oc.Results[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
