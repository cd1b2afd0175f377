// Package service wraps the synchronous dispatcher core with the mutex its
// package comment calls for: "callers driving concurrent access must
// serialize it externally." HTTP handlers, the websocket feed, and the tick
// driver all go through Service rather than touching a *dispatcher.Dispatcher
// directly, so a request handled mid-Step() blocks instead of racing it.
package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/elevatorsvc/dispatcher/internal/dispatcher"
	"github.com/elevatorsvc/dispatcher/internal/domain"
	"github.com/elevatorsvc/dispatcher/internal/metrics"
)

// Service serializes access to a dispatcher.Dispatcher.
type Service struct {
	mu         sync.Mutex
	d          *dispatcher.Dispatcher
	lastStepAt time.Time
}

// New wraps d for concurrent use.
func New(d *dispatcher.Dispatcher) *Service {
	return &Service{d: d}
}

// Pickup registers a hall call.
func (s *Service) Pickup(floor int, direction domain.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Pickup(floor, direction)
}

// SelectFloor records an in-cabin floor selection.
func (s *Service) SelectFloor(cabinID, floor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.SelectFloor(cabinID, floor)
}

// SetElevator replaces the cabin at id with a fresh idle cabin at floor.
func (s *Service) SetElevator(id, floor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.SetElevator(id, floor)
}

// SetElevatorCount resizes the fleet.
func (s *Service) SetElevatorCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.SetElevatorCount(n)
}

// SetFloorLimits installs or clears the building's floor range.
func (s *Service) SetFloorLimits(limits domain.FloorLimits, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.SetFloorLimits(limits, enabled)
}

// SetSoleElevatorMode toggles sole-cabin mode.
func (s *Service) SetSoleElevatorMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.SetSoleElevatorMode(enabled)
}

// Status returns a snapshot of every cabin.
func (s *Service) Status() []domain.CabinSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Status()
}

// Tasks returns a snapshot of every outstanding pickup.
func (s *Service) Tasks() []domain.TaskSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Tasks()
}

// Step advances the dispatcher by one tick, records the time of this
// successful step for LastStepAt, and publishes per-cabin and pool-size
// gauges for the result.
func (s *Service) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.d.Step()
	s.lastStepAt = time.Now()

	for _, c := range s.d.Status() {
		metrics.SetCabinFloor(strconv.Itoa(c.ID), c.Floor)
	}
	metrics.SetPoolSize(len(s.d.Tasks()))
}

// LastStepAt returns the time of the most recent successful Step, or the
// zero Time if Step has never been called.
func (s *Service) LastStepAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStepAt
}
