package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix marks environment variables that become runtime
// parameters: TABFLOW_PARAM_URL supplies the parameter URL.
const DefaultEnvPrefix = "TABFLOW_PARAM_"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// PipelinePath is a pipeline file or a directory of them.
	PipelinePath string `yaml:"pipeline_path"`
	// Pipeline restricts the run to one pipeline of the file.
	Pipeline string `yaml:"pipeline"`

	LogFormat   string `yaml:"log_format"`
	LogLevel    string `yaml:"log_level"`
	WorkerCount int    `yaml:"workers"`
	PreviewRows int    `yaml:"preview_rows"`

	// Params are runtime parameters; they take precedence over parameters
	// read from the environment.
	Params    map[string]string `yaml:"params"`
	EnvPrefix string            `yaml:"env_prefix"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LogFormat:   "text",
		LogLevel:    "info",
		WorkerCount: 4,
		EnvPrefix:   DefaultEnvPrefix,
	}
}

// LoadConfigFile overlays the YAML file at path onto cfg. Keys absent from
// the file keep their current values; unknown keys are an error.
func LoadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("invalid worker count %d: at least one worker is needed", cfg.WorkerCount)
	}
	if cfg.PreviewRows < 0 {
		return nil, fmt.Errorf("invalid preview rows %d: must not be negative", cfg.PreviewRows)
	}
	for name := range cfg.Params {
		if name == "" {
			return nil, errors.New("runtime parameter names cannot be empty")
		}
	}
	return &cfg, nil
}
