package aprs

// SlotAllocator is a dense-array index pool over a fixed-capacity arena: a
// stack of freed indices plus a high-water mark. It never grows the backing
// arena; Allocate fails once every slot in [0,N) is in use.
type SlotAllocator struct {
	capacity  uint32
	highWater uint32
	freed     []uint32
}

// NewSlotAllocator builds an allocator over [0,capacity).
func NewSlotAllocator(capacity uint32) *SlotAllocator {
	return &SlotAllocator{capacity: capacity}
}

// Allocate returns a unique index in [0,capacity), or false if every slot
// is already in use.
func (a *SlotAllocator) Allocate() (uint32, bool) {
	if n := len(a.freed); n > 0 {
		idx := a.freed[n-1]
		a.freed = a.freed[:n-1]
		return idx, true
	}
	if a.highWater >= a.capacity {
		return 0, false
	}
	idx := a.highWater
	a.highWater++
	return idx, true
}

// Free returns index to the pool so it can be allocated again. Freeing an
// index that is not currently allocated is a programming error.
func (a *SlotAllocator) Free(index uint32) {
	a.freed = append(a.freed, index)
}

// Capacity returns the fixed size of the arena this allocator manages.
func (a *SlotAllocator) Capacity() uint32 { return a.capacity }

// InUse returns the number of currently allocated slots.
func (a *SlotAllocator) InUse() uint32 { return a.highWater - uint32(len(a.freed)) }
