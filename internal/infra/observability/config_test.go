package observability

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadObservabilityConfig_Defaults(t *testing.T) {
	for _, k := range []string{"OBSERVABILITY_ENABLED", "SERVICE_NAME", "ENVIRONMENT", "SERVICE_VERSION", "TRACING_SAMPLING_RATIO"} {
		os.Unsetenv(k)
	}

	cfg, err := LoadObservabilityConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "dispatcher", cfg.ServiceName)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 1.0, cfg.SamplingRatio)
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := &ObservabilityConfig{Enabled: true, ServiceName: "dispatcher", SamplingRatio: 0.5}
	assert.NoError(t, cfg.Validate())

	cfg.ServiceName = ""
	assert.Error(t, cfg.Validate())

	cfg.ServiceName = "dispatcher"
	cfg.SamplingRatio = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Enabled = false
	cfg.SamplingRatio = 1.5
	assert.NoError(t, cfg.Validate(), "validation skipped when disabled")
}

func TestObservabilityConfig_GetResourceAttributes(t *testing.T) {
	cfg := &ObservabilityConfig{ServiceName: "dispatcher", Version: "2.0.0", Environment: "production"}
	attrs := cfg.GetResourceAttributes()
	assert.Equal(t, "dispatcher", attrs["service.name"])
	assert.Equal(t, "2.0.0", attrs["service.version"])
	assert.Equal(t, "production", attrs["deployment.environment"])
}
