package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevatorsvc/dispatcher/internal/constants"
)

func TestNewFloorWithValidation_RejectsOutOfAbsoluteRange(t *testing.T) {
	_, err := NewFloorWithValidation(constants.MaxAllowedFloor + 1)
	require.Error(t, err)
	assert.True(t, IsBadFloor(err))
}

func TestNewFloorWithValidation_AcceptsInRange(t *testing.T) {
	f, err := NewFloorWithValidation(3)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Value())
}

func TestFloor_Distance(t *testing.T) {
	assert.Equal(t, 5, NewFloor(2).Distance(NewFloor(-3)))
	assert.Equal(t, 5, NewFloor(-3).Distance(NewFloor(2)))
	assert.Equal(t, 0, NewFloor(4).Distance(NewFloor(4)))
}

func TestFloor_IsAboveIsBelow(t *testing.T) {
	assert.True(t, NewFloor(5).IsAbove(NewFloor(3)))
	assert.True(t, NewFloor(3).IsBelow(NewFloor(5)))
	assert.False(t, NewFloor(3).IsAbove(NewFloor(3)))
}

func TestFloor_String(t *testing.T) {
	assert.Equal(t, "-3", NewFloor(-3).String())
}
