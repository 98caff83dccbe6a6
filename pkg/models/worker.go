package models

import "time"

// WorkerStatus represents the current state of a worker.
type WorkerStatus string

const (
	// WorkerStatusIdle indicates the worker is spawned but not executing.
	WorkerStatusIdle WorkerStatus = "idle"
	// WorkerStatusRunning indicates the worker is executing a task.
	WorkerStatusRunning WorkerStatus = "running"
	// WorkerStatusDone indicates the worker finished its last task successfully.
	WorkerStatusDone WorkerStatus = "done"
	// WorkerStatusError indicates the worker's last task execution failed.
	WorkerStatusError WorkerStatus = "error"
)

// Valid returns true if the status is a known value.
func (s WorkerStatus) Valid() bool {
	switch s {
	case WorkerStatusIdle, WorkerStatusRunning, WorkerStatusDone, WorkerStatusError:
		return true
	default:
		return false
	}
}

// Worker represents a spawned model-backed executor.
type Worker struct {
	// ID is the unique identifier for this worker.
	ID string `json:"id"`
	// Tier is the capability class the worker was spawned with.
	Tier Tier `json:"tier"`
	// Status is the current state of the worker.
	Status WorkerStatus `json:"status"`
	// CurrentTaskID is the task the worker is executing, if any.
	// It is cleared only when the worker leaves the running state.
	CurrentTaskID string `json:"current_task_id,omitempty"`
	// SpawnedAt is when the worker session was created.
	SpawnedAt time.Time `json:"spawned_at"`
	// TokensUsed is the number of tokens consumed by this worker.
	TokensUsed int64 `json:"tokens_used"`
	// Cost is the estimated cost in dollars for this worker's usage.
	Cost float64 `json:"cost"`
}
