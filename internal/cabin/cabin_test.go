package cabin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevatorsvc/dispatcher/internal/domain"
)

func TestNew_StartsIdleUnassigned(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	assert.True(t, c.IsIdle())
	assert.Equal(t, domain.DirectionUnassigned, c.Direction())
	assert.Nil(t, c.AssignedPickup())
	assert.Empty(t, c.DropOffFloors())
}

func TestAdvance_IdleWithNoWorkStaysIdle(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	c.Advance()
	assert.True(t, c.IsIdle())
}

func TestAdvance_IdleWithDropOffAtCurrentFloorStopsWithoutMoving(t *testing.T) {
	c := New(0, domain.NewFloor(3))
	c.AddDropOff(domain.NewFloor(3))

	c.Advance()

	assert.Equal(t, domain.WorkStatusStopped, c.Status())
	assert.Equal(t, domain.NewFloor(3), c.Floor())
	assert.False(t, c.HasDropOff(domain.NewFloor(3)))
}

func TestAdvance_IdleWithDistantDropOffStartsMoving(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	c.AddDropOff(domain.NewFloor(5))

	c.Advance()

	assert.Equal(t, domain.WorkStatusMoving, c.Status())
	assert.Equal(t, domain.DirectionUp, c.Direction())
	assert.Equal(t, domain.NewFloor(0), c.Floor())
}

func TestAdvance_StoppedWithNoWorkGoesIdle(t *testing.T) {
	c := New(0, domain.NewFloor(3))
	c.AddDropOff(domain.NewFloor(3))
	c.Advance() // idle -> stopped
	require.Equal(t, domain.WorkStatusStopped, c.Status())

	c.Advance() // stopped -> idle, nothing left

	assert.True(t, c.IsIdle())
	assert.Equal(t, domain.DirectionUnassigned, c.Direction())
}

func TestAdvance_StoppedWithWorkResumesMoving(t *testing.T) {
	c := New(0, domain.NewFloor(3))
	c.AddDropOff(domain.NewFloor(3))
	c.AddDropOff(domain.NewFloor(6))
	c.Advance() // idle -> stopped (floor 3 cleared)
	require.Equal(t, domain.WorkStatusStopped, c.Status())
	require.Equal(t, domain.DirectionUnassigned, c.Direction())

	c.Advance() // stopped -> moving, direction assigned toward remaining drop-off

	assert.Equal(t, domain.WorkStatusMoving, c.Status())
	assert.Equal(t, domain.DirectionUp, c.Direction())
}

func TestAdvance_MovingStopsOnDropOff(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	c.AddDropOff(domain.NewFloor(1))
	c.Advance() // idle -> moving

	c.Advance() // moving -> advances to floor 1, clears drop-off, stops

	assert.Equal(t, domain.NewFloor(1), c.Floor())
	assert.Equal(t, domain.WorkStatusStopped, c.Status())
	assert.False(t, c.HasDropOff(domain.NewFloor(1)))
}

func TestAdvance_MovingStopsOnAssignedPickupAndAdoptsItsDirection(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	c.Assign(domain.NewPickupTask(domain.NewFloor(1), domain.DirectionDown))
	require.Equal(t, domain.WorkStatusMoving, c.Status())
	require.Equal(t, domain.DirectionUp, c.Direction())

	c.Advance()

	assert.Equal(t, domain.NewFloor(1), c.Floor())
	assert.Equal(t, domain.WorkStatusStopped, c.Status())
	assert.Equal(t, domain.DirectionDown, c.Direction())
	assert.Nil(t, c.AssignedPickup())
}

func TestAdvance_MovingHonorsBothDropOffAndAssignedPickupSameFloor(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	c.AddDropOff(domain.NewFloor(1))
	c.Assign(domain.NewPickupTask(domain.NewFloor(1), domain.DirectionUp))

	c.Advance()

	assert.Equal(t, domain.WorkStatusStopped, c.Status())
	assert.False(t, c.HasDropOff(domain.NewFloor(1)))
	assert.Nil(t, c.AssignedPickup())
}

func TestReset_ReturnsInFlightPickupAndClearsState(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	c.AddDropOff(domain.NewFloor(5))
	task := domain.NewPickupTask(domain.NewFloor(8), domain.DirectionUp)
	c.Assign(task)

	returned := c.Reset(domain.NewFloor(2))

	require.NotNil(t, returned)
	assert.Equal(t, task, *returned)
	assert.True(t, c.IsIdle())
	assert.Equal(t, domain.NewFloor(2), c.Floor())
	assert.Equal(t, domain.DirectionUnassigned, c.Direction())
	assert.Empty(t, c.DropOffFloors())
}

func TestReset_WithoutAssignedPickupReturnsNil(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	assert.Nil(t, c.Reset(domain.NewFloor(1)))
}

func TestCanClear_RejectsDifferentFloor(t *testing.T) {
	c := New(0, domain.NewFloor(0))
	task := domain.NewPickupTask(domain.NewFloor(5), domain.DirectionUp)
	assert.False(t, c.CanClear(task, domain.FloorLimits{}, false, false))
}

func TestCanClear_SoleModeAcceptsAnyDirection(t *testing.T) {
	c := New(0, domain.NewFloor(5))
	task := domain.NewPickupTask(domain.NewFloor(5), domain.DirectionDown)
	assert.True(t, c.CanClear(task, domain.FloorLimits{}, false, true))
}

func TestCanClear_RejectsOppositeDirectionWithoutSoleMode(t *testing.T) {
	c := New(0, domain.NewFloor(5))
	c.direction = domain.DirectionUp
	task := domain.NewPickupTask(domain.NewFloor(5), domain.DirectionDown)
	assert.False(t, c.CanClear(task, domain.FloorLimits{}, false, false))
}

func TestCanClear_AcceptsMatchingDirectionWithNoAssignedPickup(t *testing.T) {
	c := New(0, domain.NewFloor(5))
	c.direction = domain.DirectionUp
	task := domain.NewPickupTask(domain.NewFloor(5), domain.DirectionUp)
	assert.True(t, c.CanClear(task, domain.FloorLimits{}, false, false))
}

func TestCanClear_TerminalFloorRelaxationAtTop(t *testing.T) {
	c := New(0, domain.NewFloor(10))
	c.direction = domain.DirectionUp
	c.assignedPickup = &domain.PickupTask{Floor: domain.NewFloor(10), Direction: domain.DirectionDown}
	limits := domain.NewFloorLimits(-1, 10)

	task := domain.NewPickupTask(domain.NewFloor(10), domain.DirectionUp)
	assert.True(t, c.CanClear(task, limits, true, false))
}

func TestCanClear_TerminalFloorRelaxationAtBottom(t *testing.T) {
	c := New(0, domain.NewFloor(-1))
	c.direction = domain.DirectionDown
	c.assignedPickup = &domain.PickupTask{Floor: domain.NewFloor(-1), Direction: domain.DirectionUp}
	limits := domain.NewFloorLimits(-1, 10)

	task := domain.NewPickupTask(domain.NewFloor(-1), domain.DirectionDown)
	assert.True(t, c.CanClear(task, limits, true, false))
}

func TestCanClear_RejectsMismatchedAssignedPickupDirectionAwayFromTerminal(t *testing.T) {
	c := New(0, domain.NewFloor(5))
	c.direction = domain.DirectionUp
	c.assignedPickup = &domain.PickupTask{Floor: domain.NewFloor(8), Direction: domain.DirectionUp}
	limits := domain.NewFloorLimits(-1, 10)

	task := domain.NewPickupTask(domain.NewFloor(5), domain.DirectionDown)
	assert.False(t, c.CanClear(task, limits, true, false))
}

func TestSnapshot_ReflectsCurrentState(t *testing.T) {
	c := New(2, domain.NewFloor(4))
	c.AddDropOff(domain.NewFloor(7))

	snap := c.Snapshot()

	assert.Equal(t, 2, snap.ID)
	assert.Equal(t, 4, snap.Floor)
	assert.Equal(t, domain.WorkStatusIdle, snap.Status)
	assert.Equal(t, []int{7}, snap.DropOffs)
}
