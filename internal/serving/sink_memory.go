package serving

import "sync"

// SinkPush is one recorded sink write.
type SinkPush struct {
	Records      []map[string]any
	PartitionKey string
}

// MemorySink stores pushed telemetry in-memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	pushes []SinkPush
	err    error
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

// Fail makes subsequent pushes return err (nil restores success).
func (s *MemorySink) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *MemorySink) Push(records []map[string]any, partitionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.pushes = append(s.pushes, SinkPush{Records: records, PartitionKey: partitionKey})
	return nil
}

// Pushes returns a copy of the recorded writes.
func (s *MemorySink) Pushes() []SinkPush {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SinkPush, len(s.pushes))
	copy(out, s.pushes)
	return out
}
