package dispatcher

import (
	"github.com/bits-and-blooms/bitset"
)

// floorIndex tracks which floors currently hold a pool pickup in one
// travel direction. It exists purely as an O(1) pre-check before the
// dispatcher's FIFO pool scan during absorption — it never decides which
// task is chosen, only whether scanning the pool for this cabin's floor
// is worth doing at all. Backed by a bitset.BitSet when the dispatcher has
// configured FloorLimits (a dense, bounded range); falls back to a plain
// set when limits are absent, since a bitset needs a bound.
type floorIndex struct {
	bits   *bitset.BitSet
	offset int
	sparse map[int]struct{}
}

func newFloorIndex(limitsSet bool, bottom, top int) *floorIndex {
	if !limitsSet {
		return &floorIndex{sparse: make(map[int]struct{})}
	}
	span := uint(top-bottom) + 1
	return &floorIndex{bits: bitset.New(span), offset: bottom}
}

func (fi *floorIndex) set(floor int) {
	if fi.bits != nil {
		fi.bits.Set(uint(floor - fi.offset))
		return
	}
	fi.sparse[floor] = struct{}{}
}

func (fi *floorIndex) clear(floor int) {
	if fi.bits != nil {
		fi.bits.Clear(uint(floor - fi.offset))
		return
	}
	delete(fi.sparse, floor)
}

func (fi *floorIndex) test(floor int) bool {
	if fi.bits != nil {
		idx := floor - fi.offset
		if idx < 0 || uint(idx) >= fi.bits.Len() {
			return false
		}
		return fi.bits.Test(uint(idx))
	}
	_, ok := fi.sparse[floor]
	return ok
}
