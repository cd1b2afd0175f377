package domain

// WorkStatus is a cabin's current work state.
type WorkStatus string

const (
	WorkStatusIdle    WorkStatus = "idle"
	WorkStatusMoving  WorkStatus = "moving"
	WorkStatusStopped WorkStatus = "stopped"
)

// String returns the string representation of the work status.
func (s WorkStatus) String() string {
	return string(s)
}

// CabinSnapshot is a by-value snapshot of one cabin, independent of the
// dispatcher's internal state once returned.
type CabinSnapshot struct {
	ID          int        `json:"id"`
	Floor       int        `json:"floor"`
	Destination int        `json:"destination"`
	Status      WorkStatus `json:"status"`
	DropOffs    []int      `json:"drop_offs"`
}

// IsIdle reports whether the snapshotted cabin is idle.
func (c CabinSnapshot) IsIdle() bool {
	return c.Status == WorkStatusIdle
}

// TaskSnapshot is the external shape of a PickupTask.
type TaskSnapshot struct {
	Floor     int       `json:"floor"`
	Direction Direction `json:"direction"`
}
