package serving

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"servegate/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultProtocol   = "v2"
	defaultSampleRate = 1
	defaultBatchSize  = 1
)

// Config encapsulates all tunables for ModelServer construction.
type Config struct {
	// Name identifies the served model, optionally "name:version".
	Name string
	// Model is the host-supplied capability (load/predict/explain).
	Model Model
	// ModelClass overrides the class name recorded in telemetry and the
	// endpoint record. Defaults to the model's spec class or Go type.
	ModelClass string
	// Protocol selects the request validation contract (default "v2").
	Protocol string
	// InputPath/ResultPath select sub-paths of the event body as the
	// request payload and the response location.
	InputPath  string
	ResultPath string
	// DisableSharding turns off endpoint-uid partition keys on telemetry.
	DisableSharding bool

	Host     HostContext
	Registry RegistryClient
	Sink     Sink

	// SampleRate emits 1-in-N non-error telemetry records (default 1).
	SampleRate int
	// BatchSize accumulates N records per sink write (default 1).
	BatchSize int

	// Readiness wait policy for background triggers.
	WaitAttempts int
	WaitInterval time.Duration

	// Overridable processing hooks; identity defaults.
	Preprocess    PreprocessFunc
	Validate      ValidateFunc
	Postprocess   PostprocessFunc
	LoggedResults LoggedResultsFunc

	// Operations maps custom operation names to handlers, populated at
	// construction instead of dynamic lookup.
	Operations map[string]OpFunc

	Logger zerolog.Logger
}

// ModelServer owns one model instance and multiplexes inference, explain,
// health, metadata and custom operations through Handle.
type ModelServer struct {
	cfg      Config
	model    Model
	identity *Identity
	gate     *readinessGate
	ops      map[string]OpFunc
	log      zerolog.Logger

	loadOnce     sync.Once
	postInitOnce sync.Once

	mu          sync.Mutex
	endpointUID string
	metrics     map[string]float64

	pusher    *telemetryPusher
	registrar *endpointRegistrar
	startTime time.Time
}

// NewWithConfig constructs a ModelServer from Config.
func NewWithConfig(cfg Config) *ModelServer {
	if cfg.Protocol == "" {
		cfg.Protocol = defaultProtocol
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	var spec *ModelSpec
	if sp, ok := cfg.Model.(SpecProvider); ok {
		spec = sp.Spec()
	}
	s := &ModelServer{
		cfg:      cfg,
		model:    cfg.Model,
		identity: newIdentity(cfg.Name, cfg.Protocol, spec),
		gate:     newReadinessGate(cfg.WaitAttempts, cfg.WaitInterval),
		ops:      make(map[string]OpFunc, len(cfg.Operations)),
		log:      cfg.Logger.With().Str("model", cfg.Name).Logger(),
		metrics:  make(map[string]float64),
	}
	for name, fn := range cfg.Operations {
		s.ops[name] = fn
	}
	s.registrar = &endpointRegistrar{client: cfg.Registry, host: cfg.Host, log: s.log}
	s.startTime = time.Now()
	return s
}

// Name returns the model name (without version).
func (s *ModelServer) Name() string { return s.identity.Name }

// Identity returns the served model identity.
func (s *ModelServer) Identity() *Identity { return s.identity }

// Ready reports whether the model finished loading.
func (s *ModelServer) Ready() bool { return s.gate.Ready() }

// State returns the current load state.
func (s *ModelServer) State() State { return s.gate.State() }

// AwaitReady applies the readiness policy for the given trigger kind:
// interactive triggers fail immediately, background triggers wait bounded.
func (s *ModelServer) AwaitReady(trigger TriggerKind) error {
	return s.gate.await(s.identity.Name, trigger)
}

// EndpointUID returns the reconciled endpoint id, empty before registration.
func (s *ModelServer) EndpointUID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpointUID
}

// SetMetric records a custom real-time metric carried in telemetry records.
func (s *ModelServer) SetMetric(name string, value float64) {
	s.mu.Lock()
	s.metrics[name] = value
	s.mu.Unlock()
}

// customMetrics returns a snapshot of the custom metric map, nil when empty.
func (s *ModelServer) customMetrics() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.metrics) == 0 {
		return nil
	}
	out := make(map[string]float64, len(s.metrics))
	for k, v := range s.metrics {
		out[k] = v
	}
	return out
}

// telemetry returns the pusher, nil until post-load initialization ran.
func (s *ModelServer) telemetry() *telemetryPusher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pusher
}

// Status builds a detailed status response for /status.
func (s *ModelServer) Status() types.StatusResponse {
	pushed, dropped := s.telemetry().counters()
	resp := types.StatusResponse{
		State:            string(s.gate.State()),
		Model:            s.identity.Name,
		Version:          s.identity.Version(),
		Protocol:         s.identity.Protocol,
		EndpointUID:      s.EndpointUID(),
		Error:            s.gate.FailureReason(),
		UptimeSeconds:    int64(time.Since(s.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
		TelemetryPushed:  pushed,
		TelemetryDropped: dropped,
	}
	return resp
}

// Close releases the telemetry pusher. A trailing partial batch is dropped.
func (s *ModelServer) Close() error {
	s.telemetry().close()
	return nil
}

// partitionKey returns the telemetry partition key, empty when sharding by
// endpoint is disabled.
func (s *ModelServer) partitionKey() string {
	if s.cfg.DisableSharding {
		return ""
	}
	return s.EndpointUID()
}
