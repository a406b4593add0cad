package serving

import (
	"reflect"
	"testing"
)

func TestExtractInputPath(t *testing.T) {
	body := map[string]any{
		"data": map[string]any{"request": map[string]any{"inputs": []any{1.0}}},
	}
	if got := extractInputPath("", body); !reflect.DeepEqual(got, body) {
		t.Fatalf("empty path must return the body unchanged")
	}
	got, ok := extractInputPath("data.request", body).(map[string]any)
	if !ok || got["inputs"] == nil {
		t.Fatalf("got %v", got)
	}
	if got := extractInputPath("data.missing.deep", body); got != nil {
		t.Fatalf("missing key must yield nil, got %v", got)
	}
	if got := extractInputPath("data", "not a map"); got != nil {
		t.Fatalf("non-mapping body must yield nil, got %v", got)
	}
}

func TestUpdateResultPath(t *testing.T) {
	resp := map[string]any{"outputs": []any{2.0}}

	if got := updateResultPath("", map[string]any{"x": 1.0}, resp); !reflect.DeepEqual(got, resp) {
		t.Fatalf("empty path must replace the body, got %v", got)
	}

	original := map[string]any{"x": 1.0}
	root := updateResultPath("resp", original, resp).(map[string]any)
	if root["x"] != 1.0 || !reflect.DeepEqual(root["resp"], resp) {
		t.Fatalf("got %v", root)
	}

	root = updateResultPath("a.b.c", map[string]any{}, resp).(map[string]any)
	inner := root["a"].(map[string]any)["b"].(map[string]any)
	if !reflect.DeepEqual(inner["c"], resp) {
		t.Fatalf("intermediate maps not created: %v", root)
	}

	if got := updateResultPath("resp", "not a map", resp); !reflect.DeepEqual(got, resp) {
		t.Fatalf("non-mapping original must be replaced, got %v", got)
	}
}
