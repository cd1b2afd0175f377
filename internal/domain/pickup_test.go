package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickupTask_Equal(t *testing.T) {
	a := NewPickupTask(NewFloor(3), DirectionUp)
	b := NewPickupTask(NewFloor(3), DirectionUp)
	c := NewPickupTask(NewFloor(3), DirectionDown)
	d := NewPickupTask(NewFloor(4), DirectionUp)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}
