// Package agent defines the worker-session capability consumed by the
// orchestrator. The orchestrator never talks to a model provider directly;
// it is handed a Factory and works exclusively through these interfaces.
package agent

import (
	"context"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// Session is one model-backed worker session.
// This interface is implemented by:
// - api.Session (direct API calls via the Anthropic SDK)
// - test fakes in the orchestrator package
type Session interface {
	// Execute sends a prompt and suspends until the model returns output.
	// This is the dominant, highest-latency suspension point in the engine.
	// Returns an error on provider failure or context cancellation.
	Execute(ctx context.Context, prompt string) (string, error)

	// Interrupt signals the session to stop its in-flight work.
	// Best effort: the session may take time to honor it. Never blocks.
	Interrupt()

	// Terminate releases the session and any resources it holds.
	// After Terminate, the session must not be used again.
	Terminate()

	// Usage reports cumulative token usage and estimated cost for the session.
	Usage() (tokens int64, cost float64)
}

// Factory creates worker sessions for a given tier.
// Spawning may suspend on external setup (auth, connection warmup).
type Factory interface {
	// NewSession creates a session backed by a model appropriate for the tier.
	NewSession(ctx context.Context, tier models.Tier) (Session, error)
}
