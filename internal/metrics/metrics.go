// Package metrics defines the Prometheus instruments the dispatcher
// publishes on /metrics: package-level vars wired up via
// prometheus.MustRegister in init.
package metrics

import (
	"github.com/elevatorsvc/dispatcher/internal/constants"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	operationLabel = "operation"
	cabinLabel     = constants.CabinLabel
	kindLabel      = "kind"
	componentLabel = "component"
)

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP API requests, labelled by endpoint path.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{operationLabel},
	)

	cabinFloor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "cabin_floor",
			Help:      "Current floor of each cabin.",
		},
		[]string{cabinLabel},
	)

	poolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "pool_size",
			Help:      "Number of hall-call pickups currently unassigned to any cabin.",
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "errors_total",
			Help:      "Count of HTTP error responses and recovered panics, by error kind and originating component.",
		},
		[]string{kindLabel, componentLabel},
	)

	circuitBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0=closed, 1=half-open, 2=open.",
		},
	)
)

func init() {
	prometheus.MustRegister(requestDuration, cabinFloor, poolSize, errorsTotal, circuitBreakerState)
}

// ObserveRequestDuration records how long operation took to process.
func ObserveRequestDuration(operation string, seconds float64) {
	requestDuration.With(prometheus.Labels{operationLabel: operation}).Observe(seconds)
}

// SetCabinFloor publishes a cabin's current floor.
func SetCabinFloor(cabinID string, floor int) {
	cabinFloor.With(prometheus.Labels{cabinLabel: cabinID}).Set(float64(floor))
}

// SetPoolSize publishes the current size of the unassigned-pickup pool.
func SetPoolSize(size int) {
	poolSize.Set(float64(size))
}

// IncErrors records one error of kind from component.
func IncErrors(kind, component string) {
	errorsTotal.With(prometheus.Labels{kindLabel: kind, componentLabel: component}).Inc()
}

// SetCircuitBreakerState publishes the current circuit breaker state
// (0=closed, 1=half-open, 2=open).
func SetCircuitBreakerState(state int) {
	circuitBreakerState.Set(float64(state))
}
