package registryclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"servegate/internal/serving"
)

func TestGetEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method=%s", r.Method)
		}
		if r.URL.Path != "/v1/projects/proj/endpoints/my" {
			t.Fatalf("path=%s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("function_name") != "serve-fn" || q.Get("function_tag") != "latest" {
			t.Fatalf("query=%v", q)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("auth=%q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(serving.EndpointRecord{UID: "ep-1", Project: "proj", Name: "my"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	rec, err := c.GetEndpoint(context.Background(), "proj", "my", "serve-fn", "latest")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.UID != "ep-1" {
		t.Fatalf("record=%+v", rec)
	}
}

func TestGetEndpointNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.GetEndpoint(context.Background(), "proj", "my", "serve-fn", "latest")
	if !errors.Is(err, serving.ErrEndpointNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestCreateEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/projects/proj/endpoints" {
			t.Fatalf("%s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type=%q", ct)
		}
		var rec serving.EndpointRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Fatalf("decode: %v", err)
		}
		rec.UID = "ep-9"
		json.NewEncoder(w).Encode(rec)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	rec, err := c.CreateEndpoint(context.Background(), &serving.EndpointRecord{Project: "proj", Name: "my"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.UID != "ep-9" || rec.Name != "my" {
		t.Fatalf("record=%+v", rec)
	}
}

func TestPatchEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/v1/projects/proj/endpoints/my/ep-1" {
			t.Fatalf("%s %s", r.Method, r.URL.Path)
		}
		var attrs map[string]any
		if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if attrs["model_tag"] != "v2" {
			t.Fatalf("attrs=%v", attrs)
		}
		json.NewEncoder(w).Encode(serving.EndpointRecord{UID: "ep-1", ModelTag: "v2"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	rec, err := c.PatchEndpoint(context.Background(), "proj", "my", "ep-1", map[string]any{"model_tag": "v2"})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if rec.ModelTag != "v2" {
		t.Fatalf("record=%+v", rec)
	}
}

func TestServerErrorIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.GetEndpoint(context.Background(), "proj", "my", "f", "t"); err == nil {
		t.Fatalf("expected error")
	} else if errors.Is(err, serving.ErrEndpointNotFound) {
		t.Fatalf("5xx must not map to not-found")
	}
}

func TestPathEscaping(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(serving.EndpointRecord{})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.GetEndpoint(context.Background(), "a/b", "m", "f", "t"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotPath != "/v1/projects/a%2Fb/endpoints/m" {
		t.Fatalf("path=%q", gotPath)
	}
}
