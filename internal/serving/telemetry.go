package serving

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink is the external stream that receives telemetry records. It is assumed
// available only when monitoring/streaming is enabled for the hosting
// context. Push failures are contained by the pusher, never retried.
type Sink interface {
	Push(records []map[string]any, partitionKey string) error
}

// timestampLayout renders ISO-8601 with microsecond precision and a space
// separator, matching the response envelope's timestamp field.
const timestampLayout = "2006-01-02 15:04:05.000000"

// telemetryPusher samples, optionally batches, and ships per-request
// telemetry. The sampling counter and batch buffer are guarded by one mutex:
// an undercount or a corrupted batch is silent data loss.
type telemetryPusher struct {
	sink       Sink
	log        zerolog.Logger
	sampleRate int
	batchSize  int
	verbose    bool
	worker     string
	hostname   string
	funcURI    string
	modelClass string
	identity   *Identity
	metrics    func() map[string]float64

	mu         sync.Mutex
	sampleIter int
	batchIter  int
	batch      [][]any
	closed     bool
	pushed     uint64
	dropped    uint64
}

func newTelemetryPusher(cfg Config, identity *Identity, metrics func() map[string]float64, log zerolog.Logger) *telemetryPusher {
	p := &telemetryPusher{
		sink:       cfg.Sink,
		log:        log,
		sampleRate: cfg.SampleRate,
		batchSize:  cfg.BatchSize,
		verbose:    cfg.Host.Verbose,
		worker:     cfg.Host.WorkerID,
		hostname:   cfg.Host.Hostname,
		funcURI:    cfg.Host.FunctionURI,
		modelClass: modelClass(cfg),
		identity:   identity,
		metrics:    metrics,
	}
	if p.sampleRate <= 0 {
		p.sampleRate = 1
	}
	if p.batchSize <= 0 {
		p.batchSize = 1
	}
	return p
}

// baseData is the fixed header attached to every record.
func (p *telemetryPusher) baseData(endpointUID string) map[string]any {
	data := map[string]any{
		"class":        p.modelClass,
		"worker":       p.worker,
		"model":        p.identity.Name,
		"version":      p.identity.Version(),
		"host":         p.hostname,
		"function_uri": p.funcURI,
		"endpoint_id":  endpointUID,
	}
	if labels := p.identity.Labels(); len(labels) > 0 {
		data["labels"] = labels
	}
	return data
}

// push records one served request. Errors bypass sampling and are emitted
// unconditionally. Never returns an error: sink failures are logged, counted
// and dropped so they cannot reach the request path.
func (p *telemetryPusher) push(start time.Time, request map[string]any, resp any, op string, pushErr error, partitionKey, endpointUID string) {
	if p == nil || p.sink == nil {
		return
	}
	when := start.Format(timestampLayout)

	if pushErr != nil {
		data := p.baseData(endpointUID)
		data["request"] = request
		data["op"] = op
		data["when"] = when
		message := pushErr.Error()
		if p.verbose {
			message = fmt.Sprintf("%+v", pushErr)
		}
		data["error"] = message
		p.deliver([]map[string]any{data}, partitionKey)
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.sampleIter = (p.sampleIter + 1) % p.sampleRate
	if p.sampleIter != 0 {
		p.mu.Unlock()
		return
	}
	microsec := time.Since(start).Microseconds()

	if p.batchSize > 1 {
		p.batch = append(p.batch, []any{request, op, resp, when, microsec, p.metrics()})
		p.batchIter = (p.batchIter + 1) % p.batchSize
		if p.batchIter != 0 {
			p.mu.Unlock()
			return
		}
		values := p.batch
		p.batch = nil
		p.mu.Unlock()

		data := p.baseData(endpointUID)
		data["headers"] = []string{"request", "op", "resp", "when", "microsec", "metrics"}
		data["values"] = values
		p.deliver([]map[string]any{data}, partitionKey)
		return
	}
	p.mu.Unlock()

	data := p.baseData(endpointUID)
	data["request"] = request
	data["op"] = op
	data["resp"] = resp
	data["when"] = when
	data["microsec"] = microsec
	if m := p.metrics(); len(m) > 0 {
		data["metrics"] = m
	}
	p.deliver([]map[string]any{data}, partitionKey)
}

// deliver hands records to the sink, isolating the request path from any
// failure. Not retried.
func (p *telemetryPusher) deliver(records []map[string]any, partitionKey string) {
	defer func() {
		if r := recover(); r != nil {
			telemetryRecordsTotal.WithLabelValues("dropped").Inc()
			p.log.Error().Interface("panic", r).Msg("telemetry sink panicked; record dropped")
		}
	}()
	if err := p.sink.Push(records, partitionKey); err != nil {
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		telemetryRecordsTotal.WithLabelValues("dropped").Inc()
		p.log.Warn().Err(err).Msg("telemetry push failed; record dropped")
		return
	}
	p.mu.Lock()
	p.pushed++
	p.mu.Unlock()
	telemetryRecordsTotal.WithLabelValues("pushed").Inc()
}

// counters reports pushed/dropped sink writes for status reporting.
func (p *telemetryPusher) counters() (pushed, dropped uint64) {
	if p == nil {
		return 0, 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pushed, p.dropped
}

// close stops accepting records. A trailing partial batch is discarded, not
// flushed.
func (p *telemetryPusher) close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.closed = true
	p.batch = nil
	p.batchIter = 0
	p.mu.Unlock()
}

func modelClass(cfg Config) string {
	if cfg.ModelClass != "" {
		return cfg.ModelClass
	}
	if sp, ok := cfg.Model.(SpecProvider); ok {
		if spec := sp.Spec(); spec != nil && spec.Class != "" {
			return spec.Class
		}
	}
	return fmt.Sprintf("%T", cfg.Model)
}
