// Package dispatcher implements the fleet-wide scheduling loop: a shared
// pool of unassigned hall-call pickups, a fleet of cabins, and the
// two-phase Step() that advances every cabin, lets moving cabins absorb
// compatible pool pickups, and assigns remaining pool pickups to idle
// cabins closest first.
//
// Like the cabin package, the dispatcher is single-threaded and
// synchronous: every method here runs to completion before returning,
// reads no clock, and has no internal goroutines. Callers driving
// concurrent access must serialize it externally.
package dispatcher

import (
	"github.com/elevatorsvc/dispatcher/internal/cabin"
	"github.com/elevatorsvc/dispatcher/internal/domain"
)

// Dispatcher owns the fleet and the shared pickup pool.
type Dispatcher struct {
	fleet     []*cabin.Cabin
	pool      []domain.PickupTask
	limits    domain.FloorLimits
	limitsSet bool
	soleMode  bool

	upFloors   *floorIndex
	downFloors *floorIndex
}

// New builds a dispatcher with cabinCount idle cabins, all starting at
// floor 0, no floor limits, and sole mode off.
func New(cabinCount int) *Dispatcher {
	d := &Dispatcher{}
	d.rebuildFloorIndexes()
	d.SetElevatorCount(cabinCount)
	return d
}

func (d *Dispatcher) rebuildFloorIndexes() {
	bottom, top := 0, 0
	if d.limitsSet {
		bottom, top = d.limits.Bottom.Value(), d.limits.Top.Value()
	}
	d.upFloors = newFloorIndex(d.limitsSet, bottom, top)
	d.downFloors = newFloorIndex(d.limitsSet, bottom, top)
	for _, t := range d.pool {
		d.indexOf(t.Direction).set(t.Floor.Value())
	}
}

func (d *Dispatcher) indexOf(dir domain.Direction) *floorIndex {
	if dir == domain.DirectionUp {
		return d.upFloors
	}
	return d.downFloors
}

// Pickup registers a hall call. It is rejected with BadFloor if floor
// lies outside the system's absolute floor range or any configured
// FloorLimits. Duplicate (floor, direction) pairs already in the pool are
// silently ignored; an identical pickup already committed to some
// cabin's assignedPickup does not block a new pool entry (pool-only
// deduplication, matching source behaviour).
func (d *Dispatcher) Pickup(floor int, direction domain.Direction) error {
	f := domain.NewFloor(floor)
	if err := d.checkFloor(f); err != nil {
		return err
	}

	task := domain.NewPickupTask(f, direction)
	for _, existing := range d.pool {
		if existing.Equal(task) {
			return nil
		}
	}
	d.pool = append(d.pool, task)
	d.indexOf(direction).set(floor)
	return nil
}

// SelectFloor records an in-cabin floor selection. Rejected with BadFloor
// if floor is outside the system's absolute floor range or the configured
// limits, or BadCabinId if cabinID is unknown. Idempotent.
func (d *Dispatcher) SelectFloor(cabinID int, floor int) error {
	f := domain.NewFloor(floor)
	if err := d.checkFloor(f); err != nil {
		return err
	}
	c, err := d.cabinByID(cabinID)
	if err != nil {
		return err
	}
	c.AddDropOff(f)
	return nil
}

// SetElevator replaces the cabin at index id with a fresh idle cabin at
// floor. Any pickup the old cabin was committed to is returned to the
// pool. Rejected with BadCabinId if id is out of range.
func (d *Dispatcher) SetElevator(id int, floor int) error {
	c, err := d.cabinByID(id)
	if err != nil {
		return err
	}
	f := domain.NewFloor(floor)
	if returned := c.Reset(f); returned != nil {
		d.pool = append(d.pool, *returned)
		d.indexOf(returned.Direction).set(returned.Floor.Value())
	}
	return nil
}

// SetElevatorCount resizes the fleet. Growing appends fresh idle cabins at
// floor 0; shrinking truncates the tail and silently discards any
// assigned pickups the truncated cabins held (does not return them to the
// pool — an intentional asymmetry with SetElevator, see DESIGN.md).
func (d *Dispatcher) SetElevatorCount(n int) {
	if n < 0 {
		n = 0
	}
	switch {
	case n < len(d.fleet):
		d.fleet = d.fleet[:n]
	case n > len(d.fleet):
		for id := len(d.fleet); id < n; id++ {
			d.fleet = append(d.fleet, cabin.New(id, domain.NewFloor(0)))
		}
	}
}

// SetFloorLimits installs or clears the dispatcher's FloorLimits. Passing
// limitsSet=false disables all floor-range checking.
func (d *Dispatcher) SetFloorLimits(limits domain.FloorLimits, limitsSet bool) {
	d.limits = limits
	d.limitsSet = limitsSet
	d.rebuildFloorIndexes()
}

// SetSoleElevatorMode toggles sole-cabin mode, effective from the next Step().
func (d *Dispatcher) SetSoleElevatorMode(enabled bool) {
	d.soleMode = enabled
}

// Step executes one tick: advance every cabin, let each cabin that is not
// idle after its advance absorb at most one compatible pool pickup at its
// floor (which stops it), then assign remaining pool pickups to idle
// cabins (closest first, ties to lowest id).
func (d *Dispatcher) Step() {
	for _, c := range d.fleet {
		c.Advance()
		if c.IsIdle() {
			continue
		}
		if task, ok := d.firstClearable(c); ok {
			d.removeFromPool(task)
			c.Clear()
		}
	}

	for len(d.pool) > 0 {
		idle := d.closestIdleCabin(d.pool[0].Floor)
		if idle == nil {
			break
		}
		task := d.pool[0]
		d.pool = d.pool[1:]
		d.indexOf(task.Direction).clear(task.Floor.Value())
		idle.Assign(task)
	}
}

// firstClearable returns the earliest pool task (FIFO order) that c may
// absorb at its current floor, if any.
func (d *Dispatcher) firstClearable(c *cabin.Cabin) (domain.PickupTask, bool) {
	floor := c.Floor().Value()
	if !d.soleMode && !d.upFloors.test(floor) && !d.downFloors.test(floor) {
		return domain.PickupTask{}, false
	}
	for _, task := range d.pool {
		if c.CanClear(task, d.limits, d.limitsSet, d.soleMode) {
			return task, true
		}
	}
	return domain.PickupTask{}, false
}

func (d *Dispatcher) removeFromPool(task domain.PickupTask) {
	for i, t := range d.pool {
		if t.Equal(task) {
			d.pool = append(d.pool[:i], d.pool[i+1:]...)
			break
		}
	}
	d.indexOf(task.Direction).clear(task.Floor.Value())
}

// closestIdleCabin returns the idle cabin minimising |floor - target|,
// ties broken by lowest id (fleet is already id-ordered).
func (d *Dispatcher) closestIdleCabin(target domain.Floor) *cabin.Cabin {
	var best *cabin.Cabin
	bestDist := 0
	for _, c := range d.fleet {
		if !c.IsIdle() {
			continue
		}
		dist := c.Floor().Distance(target)
		if best == nil || dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	return best
}

// Status returns a by-value snapshot of every cabin, id order.
func (d *Dispatcher) Status() []domain.CabinSnapshot {
	out := make([]domain.CabinSnapshot, len(d.fleet))
	for i, c := range d.fleet {
		out[i] = c.Snapshot()
	}
	return out
}

// Tasks returns a by-value snapshot of every outstanding pickup: the pool
// plus every cabin's assignedPickup, in no particular cross-set order.
func (d *Dispatcher) Tasks() []domain.TaskSnapshot {
	out := make([]domain.TaskSnapshot, 0, len(d.pool)+len(d.fleet))
	for _, t := range d.pool {
		out = append(out, domain.TaskSnapshot{Floor: t.Floor.Value(), Direction: t.Direction})
	}
	for _, c := range d.fleet {
		if p := c.AssignedPickup(); p != nil {
			out = append(out, domain.TaskSnapshot{Floor: p.Floor.Value(), Direction: p.Direction})
		}
	}
	return out
}

func (d *Dispatcher) checkFloor(f domain.Floor) error {
	if _, err := domain.NewFloorWithValidation(f.Value()); err != nil {
		return err
	}
	if d.limitsSet && !d.limits.Contains(f) {
		return domain.NewBadFloorError(f.Value(), d.limits)
	}
	return nil
}

func (d *Dispatcher) cabinByID(id int) (*cabin.Cabin, error) {
	if id < 0 || id >= len(d.fleet) {
		return nil, domain.NewBadCabinIDError(id)
	}
	return d.fleet[id], nil
}
