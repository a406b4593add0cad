// Package serving dispatches requests against a single loaded model. It is
// structured into small files by concern:
//
//   - server.go: core ModelServer type, Config, constructor, simple getters.
//   - types.go: event, trigger, model capability and host context types.
//   - errors.go: error types and helpers (IsNotReady, IsInvalidOperation, ...).
//   - identity.go: model name/version identity with compute-once resolution.
//   - readiness.go: load-state gate and the bounded readiness wait.
//   - loader.go: sync/async model loading and post-load initialization.
//   - router.go: operation classification and dispatch over events.
//   - paths.go: input-path/result-path addressing on event bodies.
//   - telemetry.go: sampled/batched telemetry push to an output sink.
//   - registrar.go: idempotent endpoint record reconciliation.
//   - sink_memory.go, registry_memory.go: in-memory fakes for tests.
//
// External packages should treat this package as the dispatch layer and use
// public methods only (e.g., NewWithConfig, RunLoad, Handle, Ready, Status).
// Internal types are subject to change.
package serving
