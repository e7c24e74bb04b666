package app

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// CatalogPath points at extra .hcl manifests, a file or a directory.
	// The manifests built into the modules are always loaded.
	CatalogPath string `yaml:"catalog_path"`
	UIURL       string `yaml:"ui_url" validate:"omitempty,url"`
	UINamespace string `yaml:"ui_namespace"`

	LogFormat        string `yaml:"log_format" validate:"oneof=text json"`
	LogLevel         string `yaml:"log_level" validate:"oneof=debug info warn error"`
	HealthcheckPort  int    `yaml:"healthcheck_port" validate:"gte=0,lte=65535"`
	Workers          int    `yaml:"workers" validate:"gte=1"`
	StrictInvariants bool   `yaml:"strict_invariants"`

	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" validate:"required_if=TraceExporter otlp"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		LogFormat:      "json",
		LogLevel:       "info",
		Workers:        4,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
