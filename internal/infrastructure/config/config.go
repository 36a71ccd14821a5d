package config

import (
	"fmt"

	"github.com/GriffinCanCode/restkit/httpservice"
	"github.com/GriffinCanCode/restkit/internal/logging"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Service httpservice.Config `envconfig:"RESTKIT"`
	Logging logging.Config     `envconfig:"RESTKIT_LOG"`
	Metrics MetricsConfig      `envconfig:"RESTKIT_METRICS"`
}

// MetricsConfig controls the metrics dump printed after a run.
type MetricsConfig struct {
	Enabled bool `envconfig:"ENABLED" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration. The service host is left empty.
func Default() *Config {
	return &Config{
		Service: httpservice.DefaultConfig(""),
		Logging: logging.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}
