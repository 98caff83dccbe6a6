package orchestrator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// runPlan fans the plan's tasks out to workers and blocks until every
// task has settled or the run context is canceled.
//
// Scheduling is dependency-driven rather than topological: every task
// gets its own goroutine and a settlement channel, and each goroutine
// waits on the channels of its dependencies before executing. A task
// therefore never starts before every task it depends on has a recorded
// result, but tasks whose dependencies failed still run; failures are
// data, captured in results, not control flow.
func (c *Coordinator) runPlan(ctx context.Context, octx *OrchestrationContext, task models.Task, plan *models.Plan) {
	settled := make(map[string]chan struct{}, len(plan.Tasks))
	for _, t := range plan.Tasks {
		settled[t.TaskID] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range plan.Tasks {
		t := t
		g.Go(func() error {
			// The settlement channel closes no matter how this task
			// ends, so dependents never wait forever.
			defer close(settled[t.TaskID])

			for _, dep := range t.DependsOn {
				select {
				case <-settled[dep]:
				case <-gctx.Done():
					return nil
				}
			}

			// Concurrency cap. Acquired after the dependency wait so a
			// blocked task never holds a slot.
			select {
			case c.sem <- struct{}{}:
			case <-gctx.Done():
				return nil
			}
			defer func() { <-c.sem }()

			c.executePlanned(gctx, octx, task, t)
			return nil
		})
	}
	g.Wait()
}

// executePlanned spawns a worker for one planned task, runs it, and
// settles the result. Worker failures become failed results; nothing
// propagates as an error.
func (c *Coordinator) executePlanned(ctx context.Context, octx *OrchestrationContext, task models.Task, planned models.PlannedTask) {
	tier := planned.SuggestedTier
	if !tier.Valid() {
		tier = models.TierBuilder
	}

	w, err := c.pool.Spawn(ctx, tier)
	if err != nil {
		c.hub.Publish(Event{
			Type:      EventError,
			ContextID: octx.ID,
			TaskID:    planned.TaskID,
			Message:   err.Error(),
		})
		c.recordResult(octx, models.TaskResult{
			TaskID:     planned.TaskID,
			Tier:       tier,
			Status:     models.ResultFailed,
			Error:      err.Error(),
			FinishedAt: time.Now(),
		})
		return
	}

	c.lock()
	octx.WorkerIDs = append(octx.WorkerIDs, w.ID)
	c.unlock()

	output, err := c.pool.Execute(ctx, octx.ID, w.ID, planned.TaskID, workerPrompt(task, planned))
	if err != nil {
		c.recordResult(octx, models.TaskResult{
			TaskID:     planned.TaskID,
			WorkerID:   w.ID,
			Tier:       tier,
			Status:     models.ResultFailed,
			Error:      err.Error(),
			FinishedAt: time.Now(),
		})
		return
	}

	c.recordResult(octx, models.TaskResult{
		TaskID:     planned.TaskID,
		WorkerID:   w.ID,
		Tier:       tier,
		Status:     models.ResultCompleted,
		Output:     output,
		FinishedAt: time.Now(),
	})
}
