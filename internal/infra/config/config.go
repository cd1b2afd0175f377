// Package config loads dispatcher configuration from the environment using
// struct tags, applies environment-specific defaults, and validates the
// result before the service starts.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"

	"github.com/elevatorsvc/dispatcher/internal/constants"
	"github.com/elevatorsvc/dispatcher/internal/domain"
)

// Config is the dispatcher service's full runtime configuration.
type Config struct {
	// Environment and basic settings
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`

	// HTTP server
	Port            int           `env:"PORT" envDefault:"6660"`
	WebSocketPort   int           `env:"WEBSOCKET_PORT" envDefault:"6661"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	ShutdownGrace   time.Duration `env:"SERVER_SHUTDOWN_GRACE" envDefault:"2s"`

	// Dispatcher seed configuration
	DefaultMaxFloor      int           `env:"DEFAULT_MAX_FLOOR" envDefault:"9"`
	DefaultMinFloor      int           `env:"DEFAULT_MIN_FLOOR" envDefault:"0"`
	FloorLimitsEnabled   bool          `env:"FLOOR_LIMITS_ENABLED" envDefault:"true"`
	DefaultElevatorCount int           `env:"DEFAULT_ELEVATOR_COUNT" envDefault:"2"`
	SoleElevatorMode     bool          `env:"SOLE_ELEVATOR_MODE" envDefault:"false"`
	TickInterval         time.Duration `env:"TICK_INTERVAL" envDefault:"500ms"`
	MaxElevators         int           `env:"MAX_ELEVATORS" envDefault:"100"`
	CabinNamePrefix      string        `env:"CABIN_NAME_PREFIX" envDefault:"Elevator"`

	// HTTP middleware
	RateLimitRPM       int           `env:"RATE_LIMIT_RPM" envDefault:"100"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitCleanup   time.Duration `env:"RATE_LIMIT_CLEANUP" envDefault:"5m"`
	MaxRequestSize     int64         `env:"MAX_REQUEST_SIZE" envDefault:"1048576"`
	RequestTimeoutHTTP time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	CORSEnabled        bool          `env:"CORS_ENABLED" envDefault:"true"`
	CORSMaxAge         time.Duration `env:"CORS_MAX_AGE" envDefault:"12h"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Monitoring
	MetricsEnabled       bool          `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsPath          string        `env:"METRICS_PATH" envDefault:"/metrics"`
	StatusUpdateInterval time.Duration `env:"STATUS_UPDATE_INTERVAL" envDefault:"1s"`
	HealthEnabled        bool          `env:"HEALTH_ENABLED" envDefault:"true"`
	HealthPath           string        `env:"HEALTH_PATH" envDefault:"/health"`
	StructuredLogging    bool          `env:"STRUCTURED_LOGGING" envDefault:"true"`
	LogRequestDetails    bool          `env:"LOG_REQUEST_DETAILS" envDefault:"false"`
	CorrelationIDHeader  string        `env:"CORRELATION_ID_HEADER" envDefault:"X-Request-ID"`

	// Circuit breaker (wraps the tick driver's Step() call only, not the
	// HTTP handlers or the core dispatcher itself — see DESIGN.md).
	CircuitBreakerEnabled          bool          `env:"CIRCUIT_BREAKER_ENABLED" envDefault:"true"`
	CircuitBreakerMaxFailures      int           `env:"CIRCUIT_BREAKER_MAX_FAILURES" envDefault:"5"`
	CircuitBreakerResetTimeout     time.Duration `env:"CIRCUIT_BREAKER_RESET_TIMEOUT" envDefault:"30s"`
	CircuitBreakerHalfOpenLimit    int           `env:"CIRCUIT_BREAKER_HALF_OPEN_LIMIT" envDefault:"3"`
	CircuitBreakerFailureThreshold float64       `env:"CIRCUIT_BREAKER_FAILURE_THRESHOLD" envDefault:"0.6"`

	// WebSocket status feed
	WebSocketEnabled           bool          `env:"WEBSOCKET_ENABLED" envDefault:"true"`
	WebSocketPath              string        `env:"WEBSOCKET_PATH" envDefault:"/ws/status"`
	WebSocketConnectionTimeout time.Duration `env:"WEBSOCKET_CONNECTION_TIMEOUT" envDefault:"10m"`
	WebSocketWriteTimeout      time.Duration `env:"WEBSOCKET_WRITE_TIMEOUT" envDefault:"5s"`
	WebSocketReadTimeout       time.Duration `env:"WEBSOCKET_READ_TIMEOUT" envDefault:"60s"`
	WebSocketPingInterval      time.Duration `env:"WEBSOCKET_PING_INTERVAL" envDefault:"30s"`
	WebSocketMaxConnections    int           `env:"WEBSOCKET_MAX_CONNECTIONS" envDefault:"1000"`
	WebSocketBufferSize        int           `env:"WEBSOCKET_BUFFER_SIZE" envDefault:"1024"`
}

// InitConfig loads Config from the environment, applies environment-specific
// defaults, and validates the result.
func InitConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	applyEnvironmentDefaults(&cfg)

	if err := validateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyEnvironmentDefaults(cfg *Config) {
	switch cfg.Environment {
	case "development", "dev":
		applyDevelopmentDefaults(cfg)
	case "testing", "test":
		applyTestingDefaults(cfg)
	case "production", "prod":
		applyProductionDefaults(cfg)
	}
}

// applyDevelopmentDefaults makes minimal changes: debug logging and
// detailed request logs, everything else stays at its declared default.
func applyDevelopmentDefaults(cfg *Config) {
	if cfg.LogLevel == "INFO" {
		cfg.LogLevel = "DEBUG"
	}
	cfg.LogRequestDetails = true
}

// applyTestingDefaults makes ticks and timeouts fast and aggressive so
// tests fail quickly instead of hanging.
func applyTestingDefaults(cfg *Config) {
	cfg.LogLevel = "WARN"
	cfg.TickInterval = 10 * time.Millisecond

	cfg.ReadTimeout = 2 * time.Second
	cfg.WriteTimeout = 2 * time.Second
	cfg.IdleTimeout = 10 * time.Second
	cfg.RequestTimeoutHTTP = 1 * time.Second

	cfg.MetricsEnabled = false
	cfg.WebSocketEnabled = false
	cfg.LogRequestDetails = false

	cfg.RateLimitRPM = 1000
	cfg.MaxElevators = 5
	cfg.WebSocketMaxConnections = 5
	cfg.MaxRequestSize = 256 * 1024

	cfg.CircuitBreakerMaxFailures = 1
	cfg.CircuitBreakerFailureThreshold = 0.1
	cfg.CircuitBreakerResetTimeout = 5 * time.Second
}

// applyProductionDefaults tightens logging, rate limiting, and CORS for a
// production deployment. Log level, rate limit and max elevators are only
// replaced while still at their declared defaults, and CORS origins only
// when CORS_ALLOWED_ORIGINS is not set; the other fields are always replaced.
func applyProductionDefaults(cfg *Config) {
	if cfg.LogLevel == "INFO" {
		cfg.LogLevel = "WARN"
	}
	cfg.LogRequestDetails = false

	if cfg.RateLimitRPM == 100 {
		cfg.RateLimitRPM = 30
	}
	cfg.ReadTimeout = 15 * time.Second
	cfg.WriteTimeout = 15 * time.Second
	cfg.IdleTimeout = 60 * time.Second
	cfg.RequestTimeoutHTTP = 10 * time.Second

	cfg.WebSocketConnectionTimeout = 10 * time.Minute
	cfg.WebSocketMaxConnections = 5000
	cfg.WebSocketWriteTimeout = 2 * time.Second
	cfg.WebSocketReadTimeout = 30 * time.Second
	cfg.WebSocketPingInterval = 15 * time.Second

	cfg.CircuitBreakerMaxFailures = 2
	cfg.CircuitBreakerFailureThreshold = 0.3
	cfg.CircuitBreakerResetTimeout = 10 * time.Second

	if _, set := os.LookupEnv("CORS_ALLOWED_ORIGINS"); !set {
		cfg.CORSAllowedOrigins = "https://app.example.com"
	}
	cfg.MaxRequestSize = 512 * 1024
	if cfg.MaxElevators == 100 {
		cfg.MaxElevators = 200
	}
}

func validateConfiguration(cfg *Config) error {
	if cfg.DefaultMinFloor >= cfg.DefaultMaxFloor {
		return domain.NewValidationError("default min floor must be less than default max floor", nil).
			WithContext("min_floor", cfg.DefaultMinFloor).
			WithContext("max_floor", cfg.DefaultMaxFloor)
	}

	if cfg.DefaultMinFloor < constants.MinAllowedFloor {
		return domain.NewValidationError("default min floor is below system minimum", nil).
			WithContext("min_floor", cfg.DefaultMinFloor).
			WithContext("system_minimum", constants.MinAllowedFloor)
	}

	if cfg.DefaultMaxFloor > constants.MaxAllowedFloor {
		return domain.NewValidationError("default max floor exceeds system maximum", nil).
			WithContext("max_floor", cfg.DefaultMaxFloor).
			WithContext("system_maximum", constants.MaxAllowedFloor)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return domain.NewValidationError("port must be between 1 and 65535", nil).
			WithContext("port", cfg.Port)
	}

	if cfg.WebSocketPort <= 0 || cfg.WebSocketPort > 65535 {
		return domain.NewValidationError("websocket port must be between 1 and 65535", nil).
			WithContext("websocket_port", cfg.WebSocketPort)
	}

	if cfg.TickInterval <= 0 {
		return domain.NewValidationError("tick interval must be positive", nil).
			WithContext("tick_interval", cfg.TickInterval)
	}

	if cfg.MaxElevators <= 0 || cfg.MaxElevators > 1000 {
		return domain.NewValidationError("max elevators must be between 1 and 1000", nil).
			WithContext("max_elevators", cfg.MaxElevators)
	}

	if cfg.DefaultElevatorCount < 0 || cfg.DefaultElevatorCount > cfg.MaxElevators {
		return domain.NewValidationError("default elevator count must be between 0 and max elevators", nil).
			WithContext("default_count", cfg.DefaultElevatorCount).
			WithContext("max_elevators", cfg.MaxElevators)
	}

	return validateEnvironmentSpecificConfig(cfg)
}

func validateEnvironmentSpecificConfig(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.CORSAllowedOrigins == "*" {
			return domain.NewValidationError("CORS wildcard not allowed in production", nil).
				WithContext("environment", cfg.Environment)
		}
		if cfg.LogRequestDetails {
			return domain.NewValidationError("request logging should be disabled in production for performance", nil).
				WithContext("environment", cfg.Environment)
		}
		if cfg.RateLimitRPM > 100 {
			return domain.NewValidationError("rate limit too high for production", nil).
				WithContext("environment", cfg.Environment).
				WithContext("rate_limit", cfg.RateLimitRPM)
		}
	}

	if cfg.IsTesting() {
		if cfg.WebSocketEnabled {
			return domain.NewValidationError("WebSocket should be disabled in testing environment", nil).
				WithContext("environment", cfg.Environment)
		}
		if cfg.MetricsEnabled {
			return domain.NewValidationError("metrics should be disabled in testing environment", nil).
				WithContext("environment", cfg.Environment)
		}
	}

	return nil
}

// IsProduction reports whether Environment names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment reports whether Environment names a development deployment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsTesting reports whether Environment names a testing deployment.
func (c *Config) IsTesting() bool {
	return c.Environment == "testing" || c.Environment == "test"
}

// GetEnvironmentInfo returns a small summary suitable for startup logging.
func (c *Config) GetEnvironmentInfo() map[string]interface{} {
	return map[string]interface{}{
		"environment":             c.Environment,
		"log_level":               c.LogLevel,
		"port":                    c.Port,
		"metrics_enabled":         c.MetricsEnabled,
		"websocket_enabled":       c.WebSocketEnabled,
		"circuit_breaker_enabled": c.CircuitBreakerEnabled,
	}
}
