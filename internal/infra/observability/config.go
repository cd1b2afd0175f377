// Package observability wires OpenTelemetry tracing and metrics for the
// dispatcher service: a tracer/meter pair taken from the global
// OpenTelemetry providers plus an HTTP middleware that spans and times every
// request. No exporter is configured here. See DESIGN.md for why the
// additional exporter backends were dropped rather than stubbed.
package observability

import (
	"fmt"
	"os"
	"strconv"
)

// ObservabilityConfig configures the telemetry provider.
type ObservabilityConfig struct {
	Enabled     bool    `env:"OBSERVABILITY_ENABLED" envDefault:"true"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"dispatcher"`
	Environment string  `env:"ENVIRONMENT" envDefault:"development"`
	Version     string  `env:"SERVICE_VERSION" envDefault:"1.0.0"`
	SamplingRatio float64 `env:"TRACING_SAMPLING_RATIO" envDefault:"1.0"`
}

// LoadObservabilityConfig loads observability configuration from environment variables.
func LoadObservabilityConfig() (*ObservabilityConfig, error) {
	cfg := &ObservabilityConfig{
		Enabled:       getBoolEnv("OBSERVABILITY_ENABLED", true),
		ServiceName:   getStringEnv("SERVICE_NAME", "dispatcher"),
		Environment:   getStringEnv("ENVIRONMENT", "development"),
		Version:       getStringEnv("SERVICE_VERSION", "1.0.0"),
		SamplingRatio: getFloat64Env("TRACING_SAMPLING_RATIO", 1.0),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *ObservabilityConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if c.SamplingRatio < 0.0 || c.SamplingRatio > 1.0 {
		return fmt.Errorf("tracing sampling ratio must be between 0.0 and 1.0")
	}
	return nil
}

// GetResourceAttributes returns OpenTelemetry resource attributes describing this service.
func (c *ObservabilityConfig) GetResourceAttributes() map[string]string {
	return map[string]string{
		"service.name":           c.ServiceName,
		"service.version":        c.Version,
		"deployment.environment": c.Environment,
	}
}

func getStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloat64Env(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
