package sink

import (
	"encoding/json"
	"os"
	"sync"
)

// FileSink appends telemetry records as NDJSON lines to a local file. One
// line per record, the partition key inlined so nothing is lost on replay.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFile constructs a FileSink writing to path.
func NewFile(path string) *FileSink { return &FileSink{path: path} }

func (s *FileSink) Push(records []map[string]any, partitionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, rec := range records {
		line := map[string]any{"record": rec}
		if partitionKey != "" {
			line["partition_key"] = partitionKey
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
