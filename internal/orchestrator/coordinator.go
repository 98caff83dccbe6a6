package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jasonkneen/claudelet/internal/agent"
	"github.com/jasonkneen/claudelet/internal/state"
	"github.com/jasonkneen/claudelet/pkg/models"
)

var (
	// ErrUnknownContext is returned for operations on a context ID the
	// coordinator has never issued.
	ErrUnknownContext = errors.New("unknown context")
	// ErrNoAnalysis is returned when Delegate is called on a context
	// that has not completed triage.
	ErrNoAnalysis = errors.New("context has not been triaged")
	// ErrWaitTimeout is returned when WaitForContext's bound elapses
	// before the context reaches a terminal status.
	ErrWaitTimeout = errors.New("wait timeout")
	// ErrDisposed is returned for operations on a disposed coordinator.
	ErrDisposed = errors.New("coordinator disposed")
)

// defaultMaxWorkers caps concurrent task executions when the config
// leaves MaxWorkers unset.
const defaultMaxWorkers = 4

// CoordinatorConfig configures a Coordinator.
type CoordinatorConfig struct {
	// Factory creates worker sessions. Required.
	Factory agent.Factory
	// MaxWorkers caps concurrently executing sub-tasks. Defaults to 4.
	MaxWorkers int
	// Store persists context and result records. Optional; every
	// persistence hook is a no-op when nil.
	Store state.Store
	// Logger receives debug output. Optional.
	Logger *DebugLogger
}

// RunResult is the settled outcome of an asynchronous Start.
type RunResult struct {
	Output string
	Err    error
}

// Coordinator is the engine's entry point. It owns the analyzer, the
// worker pool, the event hub, and every orchestration context.
type Coordinator struct {
	analyzer *TaskAnalyzer
	pool     *WorkerPool
	hub      *EventHub
	store    state.Store
	logger   *DebugLogger

	// sem bounds concurrently executing sub-tasks across all contexts.
	sem chan struct{}

	// ctx is the engine lifetime; Dispose cancels it.
	ctx       context.Context
	cancelAll context.CancelFunc

	mu       sync.Mutex // guards contexts and disposed
	contexts map[string]*OrchestrationContext
	disposed bool
}

// NewCoordinator creates a coordinator from the given config.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	setPackageLogger(cfg.Logger)

	hub := NewEventHub()
	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		analyzer:  NewTaskAnalyzer(),
		pool:      NewWorkerPool(cfg.Factory, hub),
		hub:       hub,
		store:     cfg.Store,
		logger:    cfg.Logger,
		sem:       make(chan struct{}, maxWorkers),
		ctx:       ctx,
		cancelAll: cancel,
		contexts:  make(map[string]*OrchestrationContext),
	}
}

// lock acquires the coordinator lock.
func (c *Coordinator) lock() { c.mu.Lock() }

// unlock releases the coordinator lock.
func (c *Coordinator) unlock() { c.mu.Unlock() }

// Hub returns the event hub for subscribing to engine progress.
func (c *Coordinator) Hub() *EventHub {
	return c.hub
}

// Workers returns snapshots of all live workers.
func (c *Coordinator) Workers() []models.Worker {
	return c.pool.Workers()
}

// Triage creates a context for the task, scores it, and, for complex
// requests, runs a planner worker to decompose it. Returns the context
// ID and the analysis. The analysis always carries a suggested tier, so
// callers can proceed even when planning failed and was replaced by the
// fallback plan.
func (c *Coordinator) Triage(ctx context.Context, task models.Task) (string, *models.TaskAnalysis, error) {
	task = normalizeTask(task)

	octx := &OrchestrationContext{
		ID:        uuid.NewString()[:8],
		Task:      task,
		Status:    StatusIdle,
		Results:   make(map[string]models.TaskResult),
		CreatedAt: time.Now(),
		done:      make(chan struct{}),
	}

	c.lock()
	if c.disposed {
		c.unlock()
		return "", nil, ErrDisposed
	}
	c.contexts[octx.ID] = octx
	ev, ok := c.setStatusLocked(octx, StatusTriaging)
	c.unlock()
	if ok {
		c.hub.Publish(ev)
	}

	c.logger.Log("triage %s: %q", octx.ID, truncate(task.Content, 80))

	analysis := c.analyzer.Analyze(task.Content, task.Context)

	c.lock()
	octx.Analysis = &analysis
	c.unlock()

	c.persistCreate(octx, analysis.SuggestedTier)

	if analysis.NeedsPlanning {
		c.lock()
		ev, ok := c.setStatusLocked(octx, StatusPlanning)
		c.unlock()
		if ok {
			c.hub.Publish(ev)
		}

		plan := c.buildPlan(ctx, octx, task, &analysis)
		analysis.Plan = plan

		c.lock()
		octx.Plan = plan
		octx.Analysis = &analysis
		c.unlock()

		c.logger.Log("triage %s: plan with %d tasks", octx.ID, len(plan.Tasks))
	}

	return octx.ID, &analysis, nil
}

// buildPlan runs a high-capability planner worker and parses its output.
// Every failure path degrades to the single-task default plan, so the
// caller always gets a usable plan shape.
func (c *Coordinator) buildPlan(ctx context.Context, octx *OrchestrationContext, task models.Task, analysis *models.TaskAnalysis) *models.Plan {
	w, err := c.pool.Spawn(ctx, models.TierArchitect)
	if err != nil {
		c.warn(octx.ID, fmt.Sprintf("planner spawn failed, using default plan: %v", err))
		return DefaultPlan(task.Content, analysis.SuggestedTier)
	}

	c.lock()
	octx.WorkerIDs = append(octx.WorkerIDs, w.ID)
	c.unlock()

	output, err := c.pool.Execute(ctx, octx.ID, w.ID, "plan", planningPrompt(task, analysis))
	if err != nil {
		c.warn(octx.ID, fmt.Sprintf("planner failed, using default plan: %v", err))
		return DefaultPlan(task.Content, analysis.SuggestedTier)
	}

	return ParsePlan(output, task.Content, analysis.SuggestedTier)
}

// Delegate assigns workers to the context's tasks and starts execution.
// It returns once execution is underway; callers observe completion via
// WaitForContext, the event hub, or the futures returned by Run/Start.
func (c *Coordinator) Delegate(ctx context.Context, contextID string) error {
	c.lock()
	octx, ok := c.contexts[contextID]
	if !ok {
		c.unlock()
		return fmt.Errorf("delegate %s: %w", contextID, ErrUnknownContext)
	}
	if octx.Analysis == nil {
		c.unlock()
		return fmt.Errorf("delegate %s: %w", contextID, ErrNoAnalysis)
	}
	if octx.Status.Terminal() {
		c.unlock()
		return fmt.Errorf("delegate %s: context is already %s", contextID, octx.Status)
	}
	if statusRank[octx.Status] >= statusRank[StatusDelegating] {
		c.unlock()
		return fmt.Errorf("delegate %s: already delegated", contextID)
	}

	// Without a plan the original request runs as a single task at the
	// analyzer's suggested tier.
	execPlan := octx.Plan
	if execPlan == nil {
		execPlan = DefaultPlan(octx.Task.Content, octx.Analysis.SuggestedTier)
	}
	octx.TaskIDs = execPlan.TaskIDs()

	ev, ok := c.setStatusLocked(octx, StatusDelegating)

	runCtx, cancel := context.WithCancel(c.ctx)
	octx.cancel = cancel
	task := octx.Task
	c.unlock()
	if ok {
		c.hub.Publish(ev)
	}

	c.logger.Log("delegate %s: %d tasks", contextID, len(execPlan.Tasks))

	go c.runContext(runCtx, octx, task, execPlan)

	return nil
}

// runContext drives the fan-out for one context and settles its final
// status once every tracked task has a result.
func (c *Coordinator) runContext(ctx context.Context, octx *OrchestrationContext, task models.Task, plan *models.Plan) {
	c.lock()
	ev, ok := c.setStatusLocked(octx, StatusRunning)
	c.unlock()
	if ok {
		c.hub.Publish(ev)
	}

	c.runPlan(ctx, octx, task, plan)

	c.lock()
	if octx.Status.Terminal() {
		// Interrupted mid-run; the interrupt already settled the context.
		c.unlock()
		return
	}

	final := StatusComplete
	for _, id := range octx.TaskIDs {
		r, ok := octx.Results[id]
		if !ok || r.Failed() {
			final = StatusFailed
			break
		}
	}
	if ctx.Err() != nil {
		final = StatusCanceled
	}
	ev, ok = c.setStatusLocked(octx, final)
	c.unlock()
	if ok {
		c.hub.Publish(ev)
	}
	octx.markDone()

	c.persistStatus(octx)
	c.logger.Log("context %s settled: %s", octx.ID, final)
}

// Run executes a task end to end: triage, delegate, await settlement,
// aggregate. It blocks until the final response is ready. A canceled
// context yields the literal output "Canceled." with no error.
func (c *Coordinator) Run(ctx context.Context, task models.Task) (string, error) {
	contextID, _, err := c.Triage(ctx, task)
	if err != nil {
		return "", err
	}
	if err := c.Delegate(ctx, contextID); err != nil {
		return "", err
	}
	return c.awaitAndAggregate(ctx, contextID)
}

// Start is the asynchronous form of Run: it triages synchronously, then
// returns the context ID immediately alongside a future for the final
// response. Callers can watch the hub or poll GetContext for partial
// progress while the future is pending.
func (c *Coordinator) Start(ctx context.Context, task models.Task) (string, <-chan RunResult, error) {
	contextID, _, err := c.Triage(ctx, task)
	if err != nil {
		return "", nil, err
	}

	result := make(chan RunResult, 1)
	go func() {
		if err := c.Delegate(ctx, contextID); err != nil {
			result <- RunResult{Err: err}
			return
		}
		output, err := c.awaitAndAggregate(ctx, contextID)
		result <- RunResult{Output: output, Err: err}
	}()

	return contextID, result, nil
}

// awaitAndAggregate blocks until the context settles, interrupting it if
// the caller's context is canceled first, then aggregates the results.
func (c *Coordinator) awaitAndAggregate(ctx context.Context, contextID string) (string, error) {
	c.lock()
	octx, ok := c.contexts[contextID]
	c.unlock()
	if !ok {
		return "", fmt.Errorf("await %s: %w", contextID, ErrUnknownContext)
	}

	select {
	case <-octx.done:
	case <-ctx.Done():
		// Cooperative teardown on caller cancellation. The interrupt
		// settles the context, so this second wait is brief.
		c.InterruptContext(contextID, "caller canceled")
		<-octx.done
	}

	// Snapshot after settlement so aggregation is immune to the context
	// registry being cleared by a concurrent Dispose.
	c.lock()
	snap := octx.snapshot()
	c.unlock()

	return c.aggregate(ctx, snap), nil
}

// AskArchitect sends a clarifying question about a context to a
// high-capability worker, reusing the context's planner session when one
// exists. The response is appended to the plan's refinements and never
// touches task results.
func (c *Coordinator) AskArchitect(ctx context.Context, contextID, question string) (string, error) {
	c.lock()
	octx, ok := c.contexts[contextID]
	if !ok {
		c.unlock()
		return "", fmt.Errorf("ask architect %s: %w", contextID, ErrUnknownContext)
	}

	workerID := ""
	for _, id := range octx.WorkerIDs {
		if w, ok := c.pool.Get(id); ok && w.Tier == models.TierArchitect && w.Status != models.WorkerStatusRunning {
			workerID = id
			break
		}
	}
	task := octx.Task
	plan := octx.Plan
	c.unlock()

	if workerID == "" {
		w, err := c.pool.Spawn(ctx, models.TierArchitect)
		if err != nil {
			return "", fmt.Errorf("ask architect %s: %w", contextID, err)
		}
		workerID = w.ID
		c.lock()
		octx.WorkerIDs = append(octx.WorkerIDs, workerID)
		c.unlock()
	}

	answer, err := c.pool.Execute(ctx, contextID, workerID, "clarify", refinePrompt(task, plan, question))
	if err != nil {
		return "", fmt.Errorf("ask architect %s: %w", contextID, err)
	}

	c.lock()
	if octx.Plan == nil {
		octx.Plan = &models.Plan{}
	}
	octx.Plan.Refinements = append(octx.Plan.Refinements, answer)
	c.unlock()

	return answer, nil
}

// WaitForContext blocks until the context reaches a terminal status and
// returns it. A non-positive timeout waits indefinitely; otherwise the
// wait fails with an error naming the elapsed bound.
func (c *Coordinator) WaitForContext(ctx context.Context, contextID string, timeout time.Duration) (ContextStatus, error) {
	c.lock()
	octx, ok := c.contexts[contextID]
	c.unlock()
	if !ok {
		return "", fmt.Errorf("wait for %s: %w", contextID, ErrUnknownContext)
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-octx.done:
	case <-expired:
		return "", fmt.Errorf("context %s did not reach a terminal status within %s: %w", contextID, timeout, ErrWaitTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}

	c.lock()
	status := octx.Status
	c.unlock()
	return status, nil
}

// InterruptContext cancels a context: every worker spawned for it is
// interrupted, in-flight results are discarded, and the status becomes
// canceled regardless of what it was before. Interrupting an
// already-terminal context still marks it canceled and emits a warning.
func (c *Coordinator) InterruptContext(contextID, reason string) error {
	c.lock()
	octx, ok := c.contexts[contextID]
	if !ok {
		c.unlock()
		return fmt.Errorf("interrupt %s: %w", contextID, ErrUnknownContext)
	}

	octx.Status = StatusCanceled
	if octx.CompletedAt == nil {
		now := time.Now()
		octx.CompletedAt = &now
	}
	if octx.cancel != nil {
		octx.cancel()
	}
	workers := append([]string(nil), octx.WorkerIDs...)
	octx.markDone()
	c.unlock()

	for _, id := range workers {
		c.pool.Interrupt(id)
	}

	c.warn(contextID, fmt.Sprintf("interrupted: %s", reason))
	c.hub.Publish(Event{
		Type:      EventContextUpdate,
		ContextID: contextID,
		Status:    StatusCanceled,
		Message:   reason,
	})
	c.persistStatus(octx)
	c.logger.Log("context %s interrupted: %s", contextID, reason)

	return nil
}

// GetContext returns a snapshot of the context's current state.
func (c *Coordinator) GetContext(contextID string) (*OrchestrationContext, error) {
	c.lock()
	defer c.unlock()

	octx, ok := c.contexts[contextID]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", contextID, ErrUnknownContext)
	}
	return octx.snapshot(), nil
}

// Dispose shuts the engine down: every non-terminal context is marked
// canceled, every worker session is terminated, the context registry is
// cleared, and all subsequent operations fail with ErrDisposed.
func (c *Coordinator) Dispose() {
	c.lock()
	if c.disposed {
		c.unlock()
		return
	}
	c.disposed = true
	for _, octx := range c.contexts {
		if !octx.Status.Terminal() {
			octx.Status = StatusCanceled
			now := time.Now()
			octx.CompletedAt = &now
		}
		if octx.cancel != nil {
			octx.cancel()
		}
		octx.markDone()
	}
	c.contexts = make(map[string]*OrchestrationContext)
	c.unlock()

	c.cancelAll()
	c.pool.TerminateAll()
	c.logger.Log("coordinator disposed")
}

// setStatusLocked applies a forward-only status transition and returns
// the context update to publish once the coordinator lock is released.
// Publishing outside the lock leaves subscribers free to call back into
// the coordinator. Transitions that would move backward, or away from a
// terminal status, are ignored.
//
// Terminal transitions set CompletedAt but leave the done channel to the
// caller, which closes it after publishing so waiters never wake before
// the settlement has been announced.
func (c *Coordinator) setStatusLocked(octx *OrchestrationContext, status ContextStatus) (Event, bool) {
	if octx.Status.Terminal() {
		return Event{}, false
	}
	if statusRank[status] < statusRank[octx.Status] {
		debugLog("context %s: ignoring backward transition %s -> %s", octx.ID, octx.Status, status)
		return Event{}, false
	}

	octx.Status = status
	if status.Terminal() {
		now := time.Now()
		octx.CompletedAt = &now
	}

	return Event{
		Type:      EventContextUpdate,
		ContextID: octx.ID,
		Status:    status,
	}, true
}

// recordResult settles one sub-task result. Results are write-once per
// task ID, and nothing is recorded once the context is terminal, so a
// straggling worker finishing after an interrupt cannot resurrect a
// canceled context.
func (c *Coordinator) recordResult(octx *OrchestrationContext, result models.TaskResult) {
	c.lock()
	if octx.Status.Terminal() {
		c.unlock()
		debugLog("context %s: dropping result for %s, context is %s", octx.ID, result.TaskID, octx.Status)
		return
	}
	if _, exists := octx.Results[result.TaskID]; exists {
		c.unlock()
		debugLog("context %s: dropping duplicate result for %s", octx.ID, result.TaskID)
		return
	}
	octx.Results[result.TaskID] = result
	c.unlock()

	c.hub.Publish(Event{
		Type:      EventContextUpdate,
		ContextID: octx.ID,
		TaskID:    result.TaskID,
		WorkerID:  result.WorkerID,
		Status:    StatusRunning,
		Message:   fmt.Sprintf("task %s %s", result.TaskID, result.Status),
	})
	c.persistResult(octx.ID, result)
}

// warn emits a warning event.
func (c *Coordinator) warn(contextID, message string) {
	c.hub.Publish(Event{
		Type:      EventWarning,
		ContextID: contextID,
		Message:   message,
	})
}

// persistCreate writes the context row. Best effort; persistence
// failures are logged and never affect orchestration.
func (c *Coordinator) persistCreate(octx *OrchestrationContext, tier models.Tier) {
	if c.store == nil {
		return
	}
	err := c.store.CreateContext(&state.ContextRecord{
		ID:        octx.ID,
		Request:   octx.Task.Content,
		Status:    string(octx.Status),
		Tier:      string(tier),
		CreatedAt: octx.CreatedAt,
	})
	if err != nil {
		debugLog("store: create context %s: %v", octx.ID, err)
	}
}

// persistStatus writes the context's terminal status.
func (c *Coordinator) persistStatus(octx *OrchestrationContext) {
	if c.store == nil {
		return
	}
	c.lock()
	status := string(octx.Status)
	completedAt := octx.CompletedAt
	c.unlock()

	if err := c.store.UpdateContextStatus(octx.ID, status, completedAt); err != nil {
		debugLog("store: update context %s: %v", octx.ID, err)
	}
}

// persistResult writes one settled result row.
func (c *Coordinator) persistResult(contextID string, r models.TaskResult) {
	if c.store == nil {
		return
	}
	err := c.store.RecordResult(&state.ResultRecord{
		ContextID:  contextID,
		TaskID:     r.TaskID,
		WorkerID:   r.WorkerID,
		Tier:       string(r.Tier),
		Status:     string(r.Status),
		Output:     r.Output,
		Error:      r.Error,
		FinishedAt: r.FinishedAt,
	})
	if err != nil {
		debugLog("store: record result %s/%s: %v", contextID, r.TaskID, err)
	}
}

// normalizeTask backfills identity and defaults on an incoming task.
func normalizeTask(task models.Task) models.Task {
	if task.ID == "" {
		task.ID = uuid.NewString()[:8]
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if !task.Priority.Valid() {
		task.Priority = models.PriorityNormal
	}
	return task
}

// truncate shortens s for log lines.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
