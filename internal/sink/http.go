// Package sink provides output-stream implementations for telemetry records.
package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// HTTPSink posts each batch of records as one JSON document. The partition
// key travels as a query parameter so the receiver can shard on it.
type HTTPSink struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewHTTP constructs an HTTPSink for the given endpoint URL.
func NewHTTP(endpoint, token string) *HTTPSink {
	return &HTTPSink{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		http:     &http.Client{Timeout: defaultTimeout},
	}
}

func (s *HTTPSink) Push(records []map[string]any, partitionKey string) error {
	body, err := json.Marshal(map[string]any{"records": records})
	if err != nil {
		return err
	}
	target := s.endpoint
	if partitionKey != "" {
		target += "?partition_key=" + url.QueryEscape(partitionKey)
	}
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry push failed with status %s", resp.Status)
	}
	return nil
}
