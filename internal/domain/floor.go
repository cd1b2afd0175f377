package domain

import (
	"fmt"

	"github.com/elevatorsvc/dispatcher/internal/constants"
)

// Floor represents a floor number in a building.
type Floor int

// NewFloor creates a new Floor with no validation applied.
func NewFloor(value int) Floor {
	return Floor(value)
}

// NewFloorWithValidation creates a new Floor, rejecting values outside the
// system's absolute range regardless of any configured FloorLimits.
func NewFloorWithValidation(value int) (Floor, error) {
	f := Floor(value)
	if !f.IsValidAbsolute() {
		return Floor(0), NewValidationError(
			fmt.Sprintf("floor value %d is outside allowed range [%d, %d]",
				value, constants.MinAllowedFloor, constants.MaxAllowedFloor), nil).
			WithContext("floor", value).
			WithContext("min_allowed", constants.MinAllowedFloor).
			WithContext("max_allowed", constants.MaxAllowedFloor)
	}
	return f, nil
}

// Value returns the integer value of the floor.
func (f Floor) Value() int {
	return int(f)
}

// IsValid reports whether the floor lies within [minFloor, maxFloor].
func (f Floor) IsValid(minFloor, maxFloor Floor) bool {
	return f >= minFloor && f <= maxFloor
}

// IsValidAbsolute reports whether the floor is within the system's absolute
// floor range, independent of any configured FloorLimits.
func (f Floor) IsValidAbsolute() bool {
	return int(f) >= constants.MinAllowedFloor && int(f) <= constants.MaxAllowedFloor
}

// Distance returns the absolute difference between two floors.
func (f Floor) Distance(other Floor) int {
	diff := int(f) - int(other)
	if diff < 0 {
		return -diff
	}
	return diff
}

// String returns the string representation of the floor.
func (f Floor) String() string {
	return fmt.Sprintf("%d", int(f))
}

// IsAbove reports whether this floor is above another floor.
func (f Floor) IsAbove(other Floor) bool {
	return f > other
}

// IsBelow reports whether this floor is below another floor.
func (f Floor) IsBelow(other Floor) bool {
	return f < other
}

// IsEqual reports whether this floor equals another floor.
func (f Floor) IsEqual(other Floor) bool {
	return f == other
}
