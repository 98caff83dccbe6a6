package orchestrator

import (
	"time"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// EventType identifies the kind of engine event.
type EventType string

const (
	// EventContextUpdate fires on every context status transition and on
	// every result settlement.
	EventContextUpdate EventType = "context_update"
	// EventWorkerSpawned fires when a worker session is created.
	EventWorkerSpawned EventType = "worker_spawned"
	// EventWorkerCompleted fires when a worker finishes a task successfully.
	EventWorkerCompleted EventType = "worker_completed"
	// EventWorkerFailed fires when a worker's task execution fails.
	EventWorkerFailed EventType = "worker_failed"
	// EventWarning fires for recoverable conditions (plan fallback,
	// summarizer failure, interrupts).
	EventWarning EventType = "warning"
	// EventError fires for failures that settle a task as failed.
	EventError EventType = "error"
)

// Event is a single engine progress notification.
// Events are fire-and-forget: the hub holds no history and late
// subscribers see only what is published after they subscribe.
type Event struct {
	// Type is the kind of event.
	Type EventType `json:"type"`
	// ContextID is the orchestration context the event belongs to, if any.
	ContextID string `json:"context_id,omitempty"`
	// WorkerID is the worker involved, if any.
	WorkerID string `json:"worker_id,omitempty"`
	// TaskID is the plan-local task involved, if any.
	TaskID string `json:"task_id,omitempty"`
	// Status is the context status after a transition, for context updates.
	Status ContextStatus `json:"status,omitempty"`
	// Tier is the tier of the worker involved, if any.
	Tier models.Tier `json:"tier,omitempty"`
	// Message is a human-readable description.
	Message string `json:"message,omitempty"`
	// Output carries worker output for completion events.
	Output string `json:"output,omitempty"`
	// TokensUsed is the worker's cumulative token usage at event time.
	TokensUsed int64 `json:"tokens_used,omitempty"`
	// Cost is the worker's estimated cumulative cost at event time.
	Cost float64 `json:"cost,omitempty"`
	// Timestamp is when the event was published.
	Timestamp time.Time `json:"timestamp"`
}
