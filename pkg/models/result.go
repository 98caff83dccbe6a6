package models

import "time"

// ResultStatus represents the outcome of one sub-task.
type ResultStatus string

const (
	// ResultCompleted indicates the sub-task produced output.
	ResultCompleted ResultStatus = "completed"
	// ResultFailed indicates the sub-task's worker execution failed.
	ResultFailed ResultStatus = "failed"
)

// TaskResult is the settled outcome of one sub-task.
// Results are write-once: at most one per task ID.
type TaskResult struct {
	// TaskID is the plan-local ID of the sub-task.
	TaskID string `json:"task_id"`
	// WorkerID is the worker that executed the sub-task.
	WorkerID string `json:"worker_id"`
	// Tier is the tier of the executing worker.
	Tier Tier `json:"tier"`
	// Status is completed or failed.
	Status ResultStatus `json:"status"`
	// Output is the worker's output text for completed results.
	Output string `json:"output,omitempty"`
	// Error is the failure message for failed results.
	Error string `json:"error,omitempty"`
	// FinishedAt is when the result settled.
	FinishedAt time.Time `json:"finished_at"`
}

// Failed returns true if the result settled as a failure.
func (r TaskResult) Failed() bool {
	return r.Status == ResultFailed
}
