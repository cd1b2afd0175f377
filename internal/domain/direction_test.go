package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection_IsValid(t *testing.T) {
	assert.True(t, DirectionUp.IsValid())
	assert.True(t, DirectionDown.IsValid())
	assert.True(t, DirectionUnassigned.IsValid())
	assert.False(t, Direction("sideways").IsValid())
}

func TestDirection_Opposite(t *testing.T) {
	assert.Equal(t, DirectionDown, DirectionUp.Opposite())
	assert.Equal(t, DirectionUp, DirectionDown.Opposite())
	assert.Equal(t, DirectionUnassigned, DirectionUnassigned.Opposite())
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "up", DirectionUp.String())
	assert.Equal(t, "down", DirectionDown.String())
}
