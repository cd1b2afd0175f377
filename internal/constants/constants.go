package constants

import "time"

// Application constants centralized in one location to improve type safety
// and eliminate magic strings throughout the codebase

// Default Configuration Values
const (
	// Server defaults
	DefaultPort             = 6660
	DefaultWebSocketPort    = 6661
	DefaultLogLevel         = "INFO"
	DefaultMinFloor         = 0
	DefaultMaxFloor         = 9
	DefaultElevatorCount    = 2
	DefaultSoleElevatorMode = false

	// DefaultTickInterval is the driver's default period between Step() calls.
	DefaultTickInterval = 500 * time.Millisecond

	// StatusUpdateInterval is the WebSocket feed's default broadcast period.
	StatusUpdateInterval = 1 * time.Second
)

// HTTP Content Types
const (
	ContentTypeJSON      = "application/json"
	ContentTypeTextPlain = "text/plain"
)

// HTTP Methods
const (
	MethodGET  = "GET"
	MethodPOST = "POST"
	MethodPUT  = "PUT"
)

// Component Names for Logging
const (
	ComponentHTTPServer  = "http-server"
	ComponentHTTPHandler = "http_handler"
	ComponentCabin       = "cabin"
	ComponentDispatcher  = "dispatcher"
	ComponentDriver      = "driver"
)

// Floor Validation Limits
const (
	MinAllowedFloor = -100 // Reasonable minimum for basements
	MaxAllowedFloor = 200  // Reasonable maximum for skyscrapers
)

// Metrics
const (
	MetricsNamespace = "elevator"
	CabinLabel       = "cabin"
)

// Default cabin display-label prefix (for log correlation only, never identity).
const (
	DefaultCabinPrefix = "Elevator"
)
