// Package cabin implements the per-car state machine driven once per tick
// by the dispatcher: Advance() moves a cabin toward its current
// destination, stopping to clear drop-offs and its assigned pickup.
//
// The state machine is a pure function of Cabin's fields — no goroutines,
// channels, timers, or clocks. Time only advances when the dispatcher
// calls Advance().
package cabin

import (
	"github.com/elevatorsvc/dispatcher/internal/domain"
)

// Cabin is one elevator car.
type Cabin struct {
	id             int
	floor          domain.Floor
	direction      domain.Direction
	status         domain.WorkStatus
	dropOffs       map[domain.Floor]struct{}
	assignedPickup *domain.PickupTask
}

// New creates an idle cabin at floor, identified by id (the cabin's dense
// index position in the fleet).
func New(id int, floor domain.Floor) *Cabin {
	return &Cabin{
		id:        id,
		floor:     floor,
		direction: domain.DirectionUnassigned,
		status:    domain.WorkStatusIdle,
		dropOffs:  make(map[domain.Floor]struct{}),
	}
}

// ID returns the cabin's stable, fleet-index-equal identifier.
func (c *Cabin) ID() int { return c.id }

// Floor returns the cabin's current floor.
func (c *Cabin) Floor() domain.Floor { return c.floor }

// Direction returns the cabin's current travel direction.
func (c *Cabin) Direction() domain.Direction { return c.direction }

// Status returns the cabin's current work status.
func (c *Cabin) Status() domain.WorkStatus { return c.status }

// IsIdle reports whether the cabin is idle.
func (c *Cabin) IsIdle() bool { return c.status == domain.WorkStatusIdle }

// AssignedPickup returns the cabin's committed pickup, or nil if none.
func (c *Cabin) AssignedPickup() *domain.PickupTask { return c.assignedPickup }

// DropOffFloors returns the cabin's pending drop-off floors, in no
// particular order.
func (c *Cabin) DropOffFloors() []domain.Floor {
	floors := make([]domain.Floor, 0, len(c.dropOffs))
	for f := range c.dropOffs {
		floors = append(floors, f)
	}
	return floors
}

// HasDropOff reports whether floor is a pending drop-off.
func (c *Cabin) HasDropOff(floor domain.Floor) bool {
	_, ok := c.dropOffs[floor]
	return ok
}

// AddDropOff records floor as a pending drop-off. Idempotent.
func (c *Cabin) AddDropOff(floor domain.Floor) {
	c.dropOffs[floor] = struct{}{}
}

// Assign commits the cabin to task, marks it moving, and points its
// direction toward the task's floor. The caller (dispatcher) is
// responsible for ensuring the cabin was idle.
func (c *Cabin) Assign(task domain.PickupTask) {
	t := task
	c.assignedPickup = &t
	c.status = domain.WorkStatusMoving
	c.direction = c.headingToward(task.Floor)
}

// Reset replaces the cabin's state with a fresh idle cabin at floor,
// discarding drop-offs, and returns the assigned pickup that was in
// flight (if any) so the dispatcher can return it to the pool.
func (c *Cabin) Reset(floor domain.Floor) *domain.PickupTask {
	previous := c.assignedPickup
	c.floor = floor
	c.direction = domain.DirectionUnassigned
	c.status = domain.WorkStatusIdle
	c.dropOffs = make(map[domain.Floor]struct{})
	c.assignedPickup = nil
	return previous
}

// hasWork reports whether the cabin has anything left to do.
func (c *Cabin) hasWork() bool {
	return len(c.dropOffs) > 0 || c.assignedPickup != nil
}

// destination is the floor the cabin is presently working toward, or its
// own floor if it has nothing to do.
func (c *Cabin) destination() domain.Floor {
	if c.assignedPickup != nil {
		return c.assignedPickup.Floor
	}
	if len(c.dropOffs) > 0 {
		switch c.direction {
		case domain.DirectionUp:
			return c.maxDropOff()
		case domain.DirectionDown:
			return c.minDropOff()
		default:
			return c.anyDropOff()
		}
	}
	return c.floor
}

func (c *Cabin) maxDropOff() domain.Floor {
	first := true
	var max domain.Floor
	for f := range c.dropOffs {
		if first || f.IsAbove(max) {
			max = f
			first = false
		}
	}
	return max
}

func (c *Cabin) minDropOff() domain.Floor {
	first := true
	var min domain.Floor
	for f := range c.dropOffs {
		if first || f.IsBelow(min) {
			min = f
			first = false
		}
	}
	return min
}

func (c *Cabin) anyDropOff() domain.Floor {
	for f := range c.dropOffs {
		return f
	}
	return c.floor
}

// headingToward returns Up/Down for a move from the cabin's current floor
// toward target; Unassigned if already there (callers only call this when
// a destination actually differs, per the state machine's guards).
func (c *Cabin) headingToward(target domain.Floor) domain.Direction {
	switch {
	case target.IsAbove(c.floor):
		return domain.DirectionUp
	case target.IsBelow(c.floor):
		return domain.DirectionDown
	default:
		return domain.DirectionUnassigned
	}
}

// Advance runs one tick of the cabin's state machine. It is invoked by the
// dispatcher exactly once per cabin per Step().
func (c *Cabin) Advance() {
	switch c.status {
	case domain.WorkStatusIdle:
		c.advanceIdle()
	case domain.WorkStatusStopped:
		c.advanceStopped()
	case domain.WorkStatusMoving:
		c.advanceMoving()
	}
}

func (c *Cabin) advanceIdle() {
	if !c.hasWork() {
		return
	}
	if c.HasDropOff(c.floor) {
		delete(c.dropOffs, c.floor)
		c.status = domain.WorkStatusStopped
		return
	}
	c.status = domain.WorkStatusMoving
	c.direction = c.headingToward(c.destination())
}

func (c *Cabin) advanceStopped() {
	if !c.hasWork() {
		c.status = domain.WorkStatusIdle
		c.direction = domain.DirectionUnassigned
		return
	}
	c.status = domain.WorkStatusMoving
	dest := c.destination()
	switch c.direction {
	case domain.DirectionUnassigned:
		c.direction = c.headingToward(dest)
	case domain.DirectionUp:
		if dest.IsBelow(c.floor) {
			c.direction = domain.DirectionDown
		}
	case domain.DirectionDown:
		if dest.IsAbove(c.floor) {
			c.direction = domain.DirectionUp
		}
	}
}

func (c *Cabin) advanceMoving() {
	dest := c.destination()
	switch {
	case dest.IsAbove(c.floor):
		c.floor++
	case dest.IsBelow(c.floor):
		c.floor--
	}

	stopped := false
	if c.HasDropOff(c.floor) {
		delete(c.dropOffs, c.floor)
		stopped = true
	}
	if c.assignedPickup != nil && c.assignedPickup.Floor.IsEqual(c.floor) {
		c.direction = c.assignedPickup.Direction
		c.assignedPickup = nil
		stopped = true
	}
	if stopped {
		c.status = domain.WorkStatusStopped
	}
}

// CanClear reports whether the cabin may opportunistically absorb task —
// remove it from the dispatcher's pool and stop to service it — given the
// dispatcher's current FloorLimits (may be the zero value when unset) and
// soleMode flag. The dispatcher asks this of every cabin that is not idle
// after its advance; a task on any floor other than the cabin's is rejected.
func (c *Cabin) CanClear(task domain.PickupTask, limits domain.FloorLimits, limitsSet, soleMode bool) bool {
	if !task.Floor.IsEqual(c.floor) {
		return false
	}
	if soleMode {
		return true
	}
	if task.Direction != c.direction {
		return false
	}
	if c.assignedPickup == nil {
		return true
	}
	if limitsSet {
		if c.assignedPickup.Floor.IsEqual(limits.Top) && task.Direction == domain.DirectionUp {
			return true
		}
		if c.assignedPickup.Floor.IsEqual(limits.Bottom) && task.Direction == domain.DirectionDown {
			return true
		}
	}
	return c.assignedPickup.Direction == task.Direction
}

// Clear stops the cabin to service an absorbed pickup; removing the task
// from the pool is the caller's job. The cabin's direction is left
// untouched — it already matches the heading it arrived with.
func (c *Cabin) Clear() {
	c.status = domain.WorkStatusStopped
}

// Snapshot returns a by-value summary of the cabin for external callers.
func (c *Cabin) Snapshot() domain.CabinSnapshot {
	return domain.CabinSnapshot{
		ID:          c.id,
		Floor:       c.floor.Value(),
		Destination: c.destination().Value(),
		Status:      c.status,
		DropOffs:    floorInts(c.DropOffFloors()),
	}
}

func floorInts(floors []domain.Floor) []int {
	out := make([]int, len(floors))
	for i, f := range floors {
		out[i] = f.Value()
	}
	return out
}
