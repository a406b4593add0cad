package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelSummary describes the served model for GET /v2/models.
type ModelSummary struct {
	// Model name (without version).
	// example: iris
	Name string `json:"name" example:"iris"`
	// Resolved model version.
	// example: latest
	Version string `json:"version,omitempty" example:"latest"`
	// Serving protocol tag.
	// example: v2
	Protocol string `json:"protocol" example:"v2"`
	// Whether the model finished loading.
	// example: true
	Ready bool `json:"ready" example:"true"`
}

// ModelsResponse wraps the model list returned by GET /v2/models.
type ModelsResponse struct {
	Models []ModelSummary `json:"models"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Load state of the served model (not_loaded, loading, ready, failed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Model name.
	// example: iris
	Model string `json:"model" example:"iris"`
	// Model version, empty when unresolved.
	// example: latest
	Version string `json:"version,omitempty" example:"latest"`
	// Serving protocol tag.
	// example: v2
	Protocol string `json:"protocol" example:"v2"`
	// Reconciled endpoint record id, empty when registration is disabled
	// or soft-failed.
	EndpointUID string `json:"endpoint_uid,omitempty"`
	// Recorded load failure, if any.
	Error string `json:"error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Telemetry sink writes that succeeded.
	// example: 120
	TelemetryPushed uint64 `json:"telemetry_pushed" example:"120"`
	// Telemetry sink writes that failed and were dropped.
	// example: 2
	TelemetryDropped uint64 `json:"telemetry_dropped" example:"2"`
}
