package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_DefaultValues(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()

	cfg, err := InitConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "DEBUG", cfg.LogLevel) // development default override
	assert.Equal(t, 6660, cfg.Port)
	assert.Equal(t, 6661, cfg.WebSocketPort)
	assert.Equal(t, 9, cfg.DefaultMaxFloor)
	assert.Equal(t, 0, cfg.DefaultMinFloor)
	assert.Equal(t, 2, cfg.DefaultElevatorCount)
	assert.False(t, cfg.SoleElevatorMode)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 100, cfg.MaxElevators)
	assert.True(t, cfg.LogRequestDetails) // development default override
}

func TestInitConfig_EnvironmentVariables(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()

	envVars := map[string]string{
		"ENV":                    "production",
		"LOG_LEVEL":              "ERROR",
		"PORT":                   "8080",
		"DEFAULT_MAX_FLOOR":      "20",
		"DEFAULT_MIN_FLOOR":      "-5",
		"TICK_INTERVAL":          "1s",
		"MAX_ELEVATORS":          "50",
		"CABIN_NAME_PREFIX":      "Lift",
		"RATE_LIMIT_RPM":         "80",
		"WEBSOCKET_ENABLED":      "false",
		"CIRCUIT_BREAKER_ENABLED": "false",
		"CORS_ALLOWED_ORIGINS":   "https://app.example.com",
	}
	for k, v := range envVars {
		require.NoError(t, os.Setenv(k, v))
	}

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "ERROR", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 20, cfg.DefaultMaxFloor)
	assert.Equal(t, -5, cfg.DefaultMinFloor)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 50, cfg.MaxElevators)
	assert.Equal(t, "Lift", cfg.CabinNamePrefix)
	assert.Equal(t, 80, cfg.RateLimitRPM)
	assert.False(t, cfg.WebSocketEnabled)
	assert.False(t, cfg.CircuitBreakerEnabled)
	assert.True(t, cfg.IsProduction())
}

func TestInitConfig_TestingDefaults(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()

	require.NoError(t, os.Setenv("ENV", "testing"))

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.MetricsEnabled)
	assert.False(t, cfg.WebSocketEnabled)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
}

func TestInitConfig_RejectsInvertedFloorLimits(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()

	require.NoError(t, os.Setenv("DEFAULT_MIN_FLOOR", "10"))
	require.NoError(t, os.Setenv("DEFAULT_MAX_FLOOR", "5"))

	_, err := InitConfig()
	require.Error(t, err)
}

func TestInitConfig_RejectsProductionWildcardCORS(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()

	require.NoError(t, os.Setenv("ENV", "production"))
	require.NoError(t, os.Setenv("CORS_ALLOWED_ORIGINS", "*"))

	_, err := InitConfig()
	require.Error(t, err)
}

func clearEnvVars() func() {
	envVars := []string{
		"ENV", "LOG_LEVEL", "PORT", "WEBSOCKET_PORT", "SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
		"SERVER_SHUTDOWN_GRACE", "DEFAULT_MAX_FLOOR", "DEFAULT_MIN_FLOOR",
		"FLOOR_LIMITS_ENABLED", "DEFAULT_ELEVATOR_COUNT", "SOLE_ELEVATOR_MODE",
		"TICK_INTERVAL", "MAX_ELEVATORS", "CABIN_NAME_PREFIX", "RATE_LIMIT_RPM",
		"RATE_LIMIT_WINDOW", "RATE_LIMIT_CLEANUP", "MAX_REQUEST_SIZE",
		"HTTP_REQUEST_TIMEOUT", "CORS_ENABLED", "CORS_MAX_AGE", "CORS_ALLOWED_ORIGINS",
		"METRICS_ENABLED", "METRICS_PATH", "STATUS_UPDATE_INTERVAL", "HEALTH_ENABLED",
		"HEALTH_PATH", "STRUCTURED_LOGGING", "LOG_REQUEST_DETAILS", "CORRELATION_ID_HEADER",
		"CIRCUIT_BREAKER_ENABLED", "CIRCUIT_BREAKER_MAX_FAILURES",
		"CIRCUIT_BREAKER_RESET_TIMEOUT", "CIRCUIT_BREAKER_HALF_OPEN_LIMIT",
		"CIRCUIT_BREAKER_FAILURE_THRESHOLD", "WEBSOCKET_ENABLED", "WEBSOCKET_PATH",
		"WEBSOCKET_CONNECTION_TIMEOUT", "WEBSOCKET_WRITE_TIMEOUT", "WEBSOCKET_READ_TIMEOUT",
		"WEBSOCKET_PING_INTERVAL", "WEBSOCKET_MAX_CONNECTIONS", "WEBSOCKET_BUFFER_SIZE",
	}

	original := make(map[string]string, len(envVars))
	for _, k := range envVars {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}

	return func() {
		for _, k := range envVars {
			if v := original[k]; v != "" {
				os.Setenv(k, v)
			} else {
				os.Unsetenv(k)
			}
		}
	}
}
