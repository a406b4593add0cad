package sink

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSinkPush(t *testing.T) {
	var gotQuery, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method=%s", r.Method)
		}
		gotQuery = r.URL.Query().Get("partition_key")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewHTTP(srv.URL, "tok")
	err := s.Push([]map[string]any{{"op": "infer"}, {"op": "explain"}}, "ep-1")
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotQuery != "ep-1" || gotAuth != "Bearer tok" {
		t.Fatalf("query=%q auth=%q", gotQuery, gotAuth)
	}
	records := gotBody["records"].([]any)
	if len(records) != 2 || records[0].(map[string]any)["op"] != "infer" {
		t.Fatalf("records=%v", records)
	}
}

func TestHTTPSinkOmitsEmptyPartitionKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["partition_key"]; ok {
			t.Fatalf("partition_key must be absent")
		}
	}))
	defer srv.Close()

	if err := NewHTTP(srv.URL, "").Push([]map[string]any{{"op": "infer"}}, ""); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func TestHTTPSinkReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewHTTP(srv.URL, "").Push([]map[string]any{{"op": "infer"}}, ""); err == nil {
		t.Fatalf("expected error on 5xx")
	}
}
