package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jasonkneen/claudelet/internal/agent"
	"github.com/jasonkneen/claudelet/pkg/models"
)

// WorkerPool owns every live worker session and its lifecycle bookkeeping.
// All mutation of worker records happens here; the coordinator and the
// plan executor only ever see snapshot copies.
type WorkerPool struct {
	factory agent.Factory
	hub     *EventHub

	mu       sync.RWMutex
	workers  map[string]*models.Worker
	sessions map[string]agent.Session
}

// NewWorkerPool creates a pool that spawns sessions through the factory
// and reports lifecycle events on the hub.
func NewWorkerPool(factory agent.Factory, hub *EventHub) *WorkerPool {
	return &WorkerPool{
		factory:  factory,
		hub:      hub,
		workers:  make(map[string]*models.Worker),
		sessions: make(map[string]agent.Session),
	}
}

// Spawn creates a new idle worker of the given tier.
func (p *WorkerPool) Spawn(ctx context.Context, tier models.Tier) (models.Worker, error) {
	session, err := p.factory.NewSession(ctx, tier)
	if err != nil {
		return models.Worker{}, fmt.Errorf("spawn %s worker: %w", tier, err)
	}

	w := &models.Worker{
		ID:        uuid.NewString()[:8],
		Tier:      tier,
		Status:    models.WorkerStatusIdle,
		SpawnedAt: time.Now(),
	}

	p.mu.Lock()
	p.workers[w.ID] = w
	p.sessions[w.ID] = session
	p.mu.Unlock()

	debugLog("pool: spawned worker %s (%s)", w.ID, tier)
	p.hub.Publish(Event{
		Type:     EventWorkerSpawned,
		WorkerID: w.ID,
		Tier:     tier,
	})

	return *w, nil
}

// Execute runs a prompt on the given worker and blocks until the session
// returns. The worker transitions idle/done/error -> running -> done or
// error; CurrentTaskID is set for the duration of the run and cleared
// when the worker leaves the running state.
func (p *WorkerPool) Execute(ctx context.Context, contextID, workerID, taskID, prompt string) (string, error) {
	p.mu.Lock()
	w, ok := p.workers[workerID]
	if !ok {
		p.mu.Unlock()
		return "", fmt.Errorf("unknown worker %s", workerID)
	}
	session := p.sessions[workerID]
	w.Status = models.WorkerStatusRunning
	w.CurrentTaskID = taskID
	tier := w.Tier
	p.mu.Unlock()

	debugLog("pool: worker %s executing task %s", workerID, taskID)
	output, err := session.Execute(ctx, prompt)
	tokens, cost := session.Usage()

	p.mu.Lock()
	w.TokensUsed = tokens
	w.Cost = cost
	w.CurrentTaskID = ""
	if err != nil {
		w.Status = models.WorkerStatusError
	} else {
		w.Status = models.WorkerStatusDone
	}
	p.mu.Unlock()

	if err != nil {
		p.hub.Publish(Event{
			Type:       EventWorkerFailed,
			ContextID:  contextID,
			WorkerID:   workerID,
			TaskID:     taskID,
			Tier:       tier,
			Message:    err.Error(),
			TokensUsed: tokens,
			Cost:       cost,
		})
		return "", err
	}

	p.hub.Publish(Event{
		Type:       EventWorkerCompleted,
		ContextID:  contextID,
		WorkerID:   workerID,
		TaskID:     taskID,
		Tier:       tier,
		Output:     output,
		TokensUsed: tokens,
		Cost:       cost,
	})
	return output, nil
}

// Interrupt signals the worker's session to stop in-flight work.
// Best effort; unknown workers are ignored.
func (p *WorkerPool) Interrupt(workerID string) {
	p.mu.RLock()
	session, ok := p.sessions[workerID]
	p.mu.RUnlock()

	if ok {
		debugLog("pool: interrupting worker %s", workerID)
		session.Interrupt()
	}
}

// Terminate releases the worker's session and removes it from the pool.
func (p *WorkerPool) Terminate(workerID string) {
	p.mu.Lock()
	session, ok := p.sessions[workerID]
	delete(p.sessions, workerID)
	delete(p.workers, workerID)
	p.mu.Unlock()

	if ok {
		session.Terminate()
	}
}

// TerminateAll releases every session in the pool.
func (p *WorkerPool) TerminateAll() {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[string]agent.Session)
	p.workers = make(map[string]*models.Worker)
	p.mu.Unlock()

	for id, session := range sessions {
		debugLog("pool: terminating worker %s", id)
		session.Terminate()
	}
}

// Get returns a snapshot of the worker record, if present.
func (p *WorkerPool) Get(workerID string) (models.Worker, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	w, ok := p.workers[workerID]
	if !ok {
		return models.Worker{}, false
	}
	return *w, true
}

// Workers returns snapshots of all live workers.
func (p *WorkerPool) Workers() []models.Worker {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.Worker, 0, len(p.workers))
	for _, w := range p.workers {
		out = append(out, *w)
	}
	return out
}
