package serving

import (
	"context"
	"net/http"
	"testing"
)

func TestStatusReflectsLifecycle(t *testing.T) {
	cfg, _, _ := testConfig(&fakeModel{})
	s := NewWithConfig(cfg)

	st := s.Status()
	if st.State != "not_loaded" || st.Model != "my" || st.EndpointUID != "" {
		t.Fatalf("status=%+v", st)
	}

	if err := s.RunLoad(context.Background(), LoadSync); err != nil {
		t.Fatalf("load: %v", err)
	}
	st = s.Status()
	if st.State != "ready" || st.EndpointUID != "ep-1" || st.Error != "" {
		t.Fatalf("status=%+v", st)
	}
	if st.Protocol != "v2" {
		t.Fatalf("protocol=%q", st.Protocol)
	}
}

func TestStatusReportsLoadFailure(t *testing.T) {
	cfg, _, _ := testConfig(&fakeModel{loadErr: errBoom})
	s := NewWithConfig(cfg)
	if err := s.RunLoad(context.Background(), LoadSync); err == nil {
		t.Fatalf("expected load error")
	}
	st := s.Status()
	if st.State != "failed" || st.Error == "" {
		t.Fatalf("status=%+v", st)
	}
}

func TestCustomMetricsReachTelemetry(t *testing.T) {
	s, ms := newReadyServer(t, &fakeModel{}, nil)
	s.SetMetric("queue_depth", 3)

	ev := &Event{Path: "/infer", Method: http.MethodPost, Body: map[string]any{"inputs": []any{1.0}}}
	if _, err := s.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	rec := ms.Pushes()[0].Records[0]
	metrics, ok := rec["metrics"].(map[string]float64)
	if !ok || metrics["queue_depth"] != 3 {
		t.Fatalf("metrics=%v", rec["metrics"])
	}
}

func TestPartitionKeyFollowsEndpoint(t *testing.T) {
	s, ms := newReadyServer(t, &fakeModel{}, nil)
	ev := &Event{Path: "/infer", Method: http.MethodPost, Body: map[string]any{"inputs": []any{1.0}}}
	if _, err := s.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if ms.Pushes()[0].PartitionKey != "ep-1" {
		t.Fatalf("partition key=%q", ms.Pushes()[0].PartitionKey)
	}
}

func TestDisableShardingBlanksPartitionKey(t *testing.T) {
	s, ms := newReadyServer(t, &fakeModel{}, func(cfg *Config) {
		cfg.DisableSharding = true
	})
	ev := &Event{Path: "/infer", Method: http.MethodPost, Body: map[string]any{"inputs": []any{1.0}}}
	if _, err := s.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := ms.Pushes()[0].PartitionKey; got != "" {
		t.Fatalf("partition key=%q", got)
	}
}

func TestCloseStopsTelemetry(t *testing.T) {
	s, ms := newReadyServer(t, &fakeModel{}, nil)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	ev := &Event{Path: "/infer", Method: http.MethodPost, Body: map[string]any{"inputs": []any{1.0}}}
	if _, err := s.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := len(ms.Pushes()); got != 0 {
		t.Fatalf("closed server must not push telemetry, got %d", got)
	}
}

func TestLoggedResultsHookRewritesTrackedData(t *testing.T) {
	s, ms := newReadyServer(t, &fakeModel{}, func(cfg *Config) {
		cfg.LoggedResults = func(request, response map[string]any, op string) (inputs, outputs []any) {
			return []any{"scrubbed"}, []any{"masked"}
		}
	})
	ev := &Event{ID: "lr", Path: "/infer", Method: http.MethodPost, Body: map[string]any{"inputs": []any{1.0}}}
	if _, err := s.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	rec := ms.Pushes()[0].Records[0]
	req := rec["request"].(map[string]any)
	if req["id"] != "lr" || req["inputs"].([]any)[0] != "scrubbed" {
		t.Fatalf("tracked request=%v", req)
	}
	resp := rec["resp"].(map[string]any)
	if resp["outputs"].([]any)[0] != "masked" {
		t.Fatalf("tracked response=%v", resp)
	}
}
