package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jasonkneen/claudelet/internal/agent"
	"github.com/jasonkneen/claudelet/pkg/models"
)

// fakeSession is a scripted agent.Session. Responses come from the
// factory's respond function; the optional delay makes interrupt and
// timeout behavior testable.
type fakeSession struct {
	tier    models.Tier
	factory *fakeFactory

	intOnce     sync.Once
	interrupted chan struct{}

	mu         sync.Mutex
	terminated bool
}

func (s *fakeSession) Execute(ctx context.Context, prompt string) (string, error) {
	s.factory.recordCall(s.tier, prompt)

	if delay := s.factory.delay; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		case <-s.interrupted:
			return "", errors.New("execution interrupted")
		}
	}

	select {
	case <-s.interrupted:
		return "", errors.New("execution interrupted")
	default:
	}

	return s.factory.respond(s.tier, prompt)
}

func (s *fakeSession) Interrupt() {
	s.intOnce.Do(func() { close(s.interrupted) })
}

func (s *fakeSession) Terminate() {
	s.mu.Lock()
	s.terminated = true
	s.mu.Unlock()
}

func (s *fakeSession) Usage() (int64, float64) {
	return 100, 0.01
}

type sessionCall struct {
	tier   models.Tier
	prompt string
	at     time.Time
}

// fakeFactory spawns fakeSessions and records every execution call.
type fakeFactory struct {
	respond  func(tier models.Tier, prompt string) (string, error)
	delay    time.Duration
	spawnErr error

	mu       sync.Mutex
	sessions []*fakeSession
	calls    []sessionCall
}

func newFakeFactory(respond func(models.Tier, string) (string, error)) *fakeFactory {
	if respond == nil {
		respond = func(models.Tier, string) (string, error) { return "ok", nil }
	}
	return &fakeFactory{respond: respond}
}

func (f *fakeFactory) NewSession(_ context.Context, tier models.Tier) (agent.Session, error) {
	if f.spawnErr != nil {
		return nil, f.spawnErr
	}
	s := &fakeSession{
		tier:        tier,
		factory:     f,
		interrupted: make(chan struct{}),
	}
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	return s, nil
}

func (f *fakeFactory) recordCall(tier models.Tier, prompt string) {
	f.mu.Lock()
	f.calls = append(f.calls, sessionCall{tier: tier, prompt: prompt, at: time.Now()})
	f.mu.Unlock()
}

func (f *fakeFactory) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeFactory) allCalls() []sessionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sessionCall(nil), f.calls...)
}

var _ agent.Factory = (*fakeFactory)(nil)
