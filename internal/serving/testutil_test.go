package serving

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// fakeModel is a configurable Model for tests.
type fakeModel struct {
	mu         sync.Mutex
	loadErr    error
	loadDelay  time.Duration
	loadCalls  int
	predictErr error
	predictFn  func(map[string]any) (any, error)
	explainFn  func(map[string]any) (any, error)
	spec       *ModelSpec
}

func (m *fakeModel) Load() error {
	m.mu.Lock()
	m.loadCalls++
	delay, err := m.loadDelay, m.loadErr
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (m *fakeModel) Predict(request map[string]any) (any, error) {
	if m.predictErr != nil {
		return nil, m.predictErr
	}
	if m.predictFn != nil {
		return m.predictFn(request)
	}
	return []any{7.0}, nil
}

func (m *fakeModel) Explain(request map[string]any) (any, error) {
	if m.explainFn != nil {
		return m.explainFn(request)
	}
	return map[string]any{"explained": true}, nil
}

func (m *fakeModel) Spec() *ModelSpec { return m.spec }

func (m *fakeModel) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

var errBoom = errors.New("boom")

// testConfig returns a Config wired with in-memory collaborators and tight
// readiness timings.
func testConfig(model Model) (Config, *MemorySink, *MemoryRegistry) {
	ms := NewMemorySink()
	mr := NewMemoryRegistry()
	cfg := Config{
		Name:  "my",
		Model: model,
		Host: HostContext{
			Project:       "proj",
			FunctionName:  "serve-fn",
			FunctionTag:   "latest",
			FunctionUID:   "fn-uid-1",
			WorkerID:      "w0",
			Hostname:      "test-host",
			FunctionURI:   "proj/serve-fn",
			TrackModels:   true,
			StreamEnabled: true,
		},
		Registry:     mr,
		Sink:         ms,
		WaitAttempts: 3,
		WaitInterval: 10 * time.Millisecond,
		Logger:       zerolog.Nop(),
	}
	return cfg, ms, mr
}
