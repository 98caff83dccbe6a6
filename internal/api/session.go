package api

import (
	"context"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/jasonkneen/claudelet/internal/agent"
	"github.com/jasonkneen/claudelet/pkg/models"
)

// defaultMaxTokens bounds a single worker response.
const defaultMaxTokens = 4096

// TierModels maps worker tiers to the models backing them.
type TierModels struct {
	Scout     anthropic.Model
	Builder   anthropic.Model
	Architect anthropic.Model
}

// DefaultTierModels returns the stock tier-to-model mapping.
func DefaultTierModels() TierModels {
	return TierModels{
		Scout:     anthropic.ModelClaude3_5Haiku20241022,
		Builder:   anthropic.ModelClaudeSonnet4_20250514,
		Architect: anthropic.ModelClaudeOpus4_1_20250805,
	}
}

// Model returns the model for the given tier, defaulting to the builder model.
func (tm TierModels) Model(tier models.Tier) anthropic.Model {
	switch tier {
	case models.TierScout:
		return tm.Scout
	case models.TierArchitect:
		return tm.Architect
	default:
		return tm.Builder
	}
}

// TierTimeouts maps worker tiers to per-call execution deadlines.
// A zero duration means no deadline for that tier.
type TierTimeouts struct {
	Scout     time.Duration
	Builder   time.Duration
	Architect time.Duration
}

// For returns the timeout for the given tier, defaulting to the builder's.
func (tt TierTimeouts) For(tier models.Tier) time.Duration {
	switch tier {
	case models.TierScout:
		return tt.Scout
	case models.TierArchitect:
		return tt.Architect
	default:
		return tt.Builder
	}
}

// SessionFactory creates API-backed worker sessions.
type SessionFactory struct {
	client    *Client
	tiers     TierModels
	timeouts  TierTimeouts
	maxTokens int64
}

// NewSessionFactory creates a factory over the given client and tier mapping.
func NewSessionFactory(client *Client, tiers TierModels) *SessionFactory {
	return &SessionFactory{
		client:    client,
		tiers:     tiers,
		maxTokens: defaultMaxTokens,
	}
}

// WithTimeouts sets per-tier execution deadlines on spawned sessions.
func (f *SessionFactory) WithTimeouts(tt TierTimeouts) *SessionFactory {
	f.timeouts = tt
	return f
}

// Tracker returns the client-wide token tracker behind this factory's sessions.
func (f *SessionFactory) Tracker() *TokenTracker {
	return f.client.Tracker()
}

// NewSession creates a session backed by the tier's configured model.
func (f *SessionFactory) NewSession(ctx context.Context, tier models.Tier) (agent.Session, error) {
	return &Session{
		client:  f.client,
		model:   f.tiers.Model(tier),
		max:     f.maxTokens,
		timeout: f.timeouts.For(tier),
	}, nil
}

// Verify SessionFactory implements agent.Factory at compile time.
var _ agent.Factory = (*SessionFactory)(nil)

// Session is one API-backed worker session.
type Session struct {
	client  *Client
	model   anthropic.Model
	max     int64
	timeout time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	tokens   int64
	cost     float64
	released bool
}

// Execute sends the prompt and blocks until the model responds or the
// tier's deadline elapses. Interrupt cancels the in-flight call.
func (s *Session) Execute(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return "", context.Canceled
	}
	var callCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	output, in, out, err := s.client.Complete(callCtx, s.model, "", prompt, s.max)
	if err != nil {
		return "", err
	}

	inputRate, outputRate := modelRates(s.model)
	s.mu.Lock()
	s.tokens += in + out
	s.cost += float64(in)/1_000_000*inputRate + float64(out)/1_000_000*outputRate
	s.mu.Unlock()

	return output, nil
}

// Interrupt cancels the in-flight model call, if any. Best effort.
func (s *Session) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Terminate releases the session. Any in-flight call is canceled.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Usage reports cumulative tokens and estimated cost for this session.
func (s *Session) Usage() (int64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, s.cost
}

// Verify Session implements agent.Session at compile time.
var _ agent.Session = (*Session)(nil)
