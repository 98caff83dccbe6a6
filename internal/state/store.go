// Package state provides SQLite-backed persistence for orchestration records.
// The engine itself keeps no history; this store is an optional collaborator
// injected into the coordinator, and every hook is a no-op when it is absent.
package state

import (
	"io"
	"time"
)

// ContextRecord is the persisted lifecycle row for one orchestration context.
type ContextRecord struct {
	ID          string
	Request     string
	Status      string
	Tier        string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// ResultRecord is the persisted outcome of one sub-task.
type ResultRecord struct {
	ContextID  string
	TaskID     string
	WorkerID   string
	Tier       string
	Status     string
	Output     string
	Error      string
	FinishedAt time.Time
}

// ContextStore handles context lifecycle persistence.
type ContextStore interface {
	CreateContext(c *ContextRecord) error
	UpdateContextStatus(id, status string, completedAt *time.Time) error
	GetContext(id string) (*ContextRecord, error)
}

// ResultStore handles sub-task result persistence.
type ResultStore interface {
	RecordResult(r *ResultRecord) error
	ListResults(contextID string) ([]ResultRecord, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the interface for orchestration record persistence.
// It composes focused sub-interfaces so clients can depend on only
// what they use.
type Store interface {
	io.Closer
	Migrator
	ContextStore
	ResultStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store        = (*DB)(nil)
	_ Migrator     = (*DB)(nil)
	_ ContextStore = (*DB)(nil)
	_ ResultStore  = (*DB)(nil)
)
