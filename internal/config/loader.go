package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Model identity and dispatch.
	ModelName  string `json:"model_name" yaml:"model_name" toml:"model_name"`
	Protocol   string `json:"protocol" yaml:"protocol" toml:"protocol"`
	InputPath  string `json:"input_path" yaml:"input_path" toml:"input_path"`
	ResultPath string `json:"result_path" yaml:"result_path" toml:"result_path"`
	LoadMode   string `json:"load_mode" yaml:"load_mode" toml:"load_mode"`

	// Telemetry stream.
	SampleRate      int    `json:"sample_rate" yaml:"sample_rate" toml:"sample_rate"`
	BatchSize       int    `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	SinkURL         string `json:"sink_url" yaml:"sink_url" toml:"sink_url"`
	SinkToken       string `json:"sink_token" yaml:"sink_token" toml:"sink_token"`
	SinkPath        string `json:"sink_path" yaml:"sink_path" toml:"sink_path"`
	DisableSharding bool   `json:"disable_sharding" yaml:"disable_sharding" toml:"disable_sharding"`

	// Endpoint registry.
	RegistryURL   string `json:"registry_url" yaml:"registry_url" toml:"registry_url"`
	RegistryToken string `json:"registry_token" yaml:"registry_token" toml:"registry_token"`

	// Hosting context.
	Project         string `json:"project" yaml:"project" toml:"project"`
	FunctionName    string `json:"function_name" yaml:"function_name" toml:"function_name"`
	FunctionTag     string `json:"function_tag" yaml:"function_tag" toml:"function_tag"`
	FunctionUID     string `json:"function_uid" yaml:"function_uid" toml:"function_uid"`
	WorkerID        string `json:"worker_id" yaml:"worker_id" toml:"worker_id"`
	TrackModels     bool   `json:"track_models" yaml:"track_models" toml:"track_models"`
	MockMode        bool   `json:"mock_mode" yaml:"mock_mode" toml:"mock_mode"`
	ForceMonitoring bool   `json:"force_monitoring" yaml:"force_monitoring" toml:"force_monitoring"`
	Verbose         bool   `json:"verbose" yaml:"verbose" toml:"verbose"`

	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	MaxBodyBytes int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
