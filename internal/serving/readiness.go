package serving

import (
	"sync"
	"time"
)

// Defaults for the bounded background readiness wait (roughly four minutes).
const (
	defaultWaitAttempts = 50
	defaultWaitInterval = 5 * time.Second
)

// readinessGate tracks load state. Ready and Failed are terminal: the first
// transition into either wins and later calls are no-ops, so exactly one
// Loading -> Ready|Failed transition is observable.
type readinessGate struct {
	mu       sync.Mutex
	state    State
	reason   string
	attempts int
	interval time.Duration
}

func newReadinessGate(attempts int, interval time.Duration) *readinessGate {
	if attempts <= 0 {
		attempts = defaultWaitAttempts
	}
	if interval <= 0 {
		interval = defaultWaitInterval
	}
	return &readinessGate{state: StateNotLoaded, attempts: attempts, interval: interval}
}

func (g *readinessGate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *readinessGate) Ready() bool { return g.State() == StateReady }

// FailureReason returns the recorded load failure, empty if none.
func (g *readinessGate) FailureReason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// setLoading marks the load as started. Returns false when the gate already
// left NotLoaded, guaranteeing at most one load in flight.
func (g *readinessGate) setLoading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateNotLoaded {
		return false
	}
	g.state = StateLoading
	return true
}

func (g *readinessGate) setReady() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateReady || g.state == StateFailed {
		return
	}
	g.state = StateReady
}

func (g *readinessGate) setFailed(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateReady || g.state == StateFailed {
		return
	}
	g.state = StateFailed
	g.reason = reason
}

// await blocks until the model is ready, subject to the trigger policy:
// interactive triggers are rejected immediately, background triggers poll up
// to attempts x interval. A Failed transition rejects waiters right away.
func (g *readinessGate) await(model string, trigger TriggerKind) error {
	g.mu.Lock()
	state, reason := g.state, g.reason
	g.mu.Unlock()
	if state == StateReady {
		return nil
	}
	if state == StateFailed {
		return ErrNotReady(model, reason)
	}
	if trigger.Interactive() {
		return ErrNotReady(model, reason)
	}
	for i := 0; i < g.attempts; i++ {
		time.Sleep(g.interval)
		g.mu.Lock()
		state, reason = g.state, g.reason
		g.mu.Unlock()
		switch state {
		case StateReady:
			return nil
		case StateFailed:
			return ErrNotReady(model, reason)
		}
	}
	return ErrNotReady(model, reason)
}
