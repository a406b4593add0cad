package serving

import "context"

// State represents the load lifecycle of the served model.
type State string

const (
	StateNotLoaded State = "not_loaded"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateFailed    State = "failed"
)

// TriggerKind classifies the source of an event. Interactive triggers are
// rejected immediately when the model is not ready; background triggers wait.
type TriggerKind string

const (
	TriggerHTTP   TriggerKind = "http"
	TriggerStream TriggerKind = "stream"
	TriggerCron   TriggerKind = "cron"
)

// Interactive reports whether the trigger is latency-sensitive.
func (k TriggerKind) Interactive() bool {
	return k == "" || k == TriggerHTTP
}

// Event is one inbound unit of work. Handlers mutate it in place; terminal
// operations set Terminated so the caller stops further processing.
type Event struct {
	ID         string
	Path       string
	Method     string
	Body       any
	Trigger    TriggerKind
	Terminated bool
	// StatusCode is set by terminal operations that answer with a raw
	// status (e.g. the ready check). Zero means "no explicit status".
	StatusCode int
}

// Feature is one named input or output of the model's declared schema.
type Feature struct {
	Name      string `json:"name"`
	ValueType string `json:"value_type,omitempty"`
}

// ModelSpec carries artifact metadata about the served model. It feeds
// identity resolution, metadata responses, dict-input expansion and the
// endpoint record.
type ModelSpec struct {
	Key     string            `json:"key,omitempty"`
	UID     string            `json:"uid,omitempty"`
	Tag     string            `json:"tag,omitempty"`
	DBKey   string            `json:"db_key,omitempty"`
	Class   string            `json:"class,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
	Inputs  []Feature         `json:"inputs,omitempty"`
	Outputs []Feature         `json:"outputs,omitempty"`
}

// Model is the capability contract supplied by the hosting code. Load is
// invoked once by the loader; Predict and Explain serve requests after the
// model is ready.
type Model interface {
	Load() error
	Predict(request map[string]any) (any, error)
	Explain(request map[string]any) (any, error)
}

// SpecProvider is optionally implemented by models that carry artifact
// metadata. A nil return is treated the same as not implementing it.
type SpecProvider interface {
	Spec() *ModelSpec
}

// OpFunc is a registered custom operation. It receives the raw event and
// returns the response body to write into the result path.
type OpFunc func(ctx context.Context, ev *Event) (any, error)

// Hook signatures for request processing around predict/explain.
type (
	PreprocessFunc  func(request map[string]any, operation string) (map[string]any, error)
	ValidateFunc    func(request map[string]any, operation string) (map[string]any, error)
	PostprocessFunc func(response map[string]any) (map[string]any, error)
	// LoggedResultsFunc controls which inputs/outputs reach telemetry.
	// Returning nil, nil tracks the request/response unchanged.
	LoggedResultsFunc func(request, response map[string]any, operation string) (inputs, outputs []any)
)

// HostContext describes the hosting runtime: function identity, worker id,
// and whether tracking/streaming are enabled for this deployment.
type HostContext struct {
	Project      string
	FunctionName string
	FunctionTag  string
	FunctionUID  string
	FunctionURI  string
	WorkerID     string
	Hostname     string
	// TrackModels enables endpoint registration and monitoring mode.
	TrackModels bool
	// MockMode suppresses endpoint registration and telemetry unless
	// ForceMonitoring is set.
	MockMode        bool
	ForceMonitoring bool
	// StreamEnabled gates telemetry pusher initialization.
	StreamEnabled bool
	Verbose       bool
}

// monitoring reports whether post-load monitoring wiring should run.
func (h HostContext) monitoring() bool {
	return !h.MockMode || h.ForceMonitoring
}
