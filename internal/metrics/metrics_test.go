package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequestDuration_RecordsSample(t *testing.T) {
	before := testutil.CollectAndCount(requestDuration)
	ObserveRequestDuration("pickup", 0.02)
	after := testutil.CollectAndCount(requestDuration)
	assert.Equal(t, before+1, after)
}

func TestSetCabinFloor_PublishesValue(t *testing.T) {
	SetCabinFloor("0", 4)
	value := testutil.ToFloat64(cabinFloor.With(prometheus.Labels{cabinLabel: "0"}))
	assert.Equal(t, 4.0, value)
}

func TestSetPoolSize_PublishesValue(t *testing.T) {
	SetPoolSize(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(poolSize))
}

func TestIncErrors_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(errorsTotal.With(prometheus.Labels{kindLabel: "validation", componentLabel: "dispatcher"}))
	IncErrors("validation", "dispatcher")
	after := testutil.ToFloat64(errorsTotal.With(prometheus.Labels{kindLabel: "validation", componentLabel: "dispatcher"}))
	assert.Equal(t, before+1, after)
}

func TestSetCircuitBreakerState_PublishesValue(t *testing.T) {
	SetCircuitBreakerState(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(circuitBreakerState))
}
