package models

import "time"

// Priority represents how urgently a task should be handled.
type Priority string

const (
	// PriorityUrgent indicates the task should preempt normal work.
	PriorityUrgent Priority = "urgent"
	// PriorityNormal is the default priority.
	PriorityNormal Priority = "normal"
	// PriorityTodo indicates deferred, best-effort work.
	PriorityTodo Priority = "todo"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityNormal, PriorityTodo:
		return true
	default:
		return false
	}
}

// TaskContext carries optional context attached to a user request.
type TaskContext struct {
	// Files lists file paths the user attached or referenced.
	Files []string `json:"files,omitempty"`
	// PriorTurns holds earlier conversation turns relevant to the request.
	PriorTurns []string `json:"prior_turns,omitempty"`
	// Constraints lists explicit requirements the response must honor.
	Constraints []string `json:"constraints,omitempty"`
}

// Task represents a user request to fulfill.
// Tasks are immutable once created.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Content is the request text.
	Content string `json:"content"`
	// Context is optional attached context (files, prior turns, constraints).
	Context *TaskContext `json:"context,omitempty"`
	// Priority indicates how urgently the task should be handled.
	Priority Priority `json:"priority"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
}
