package transcoder

import (
	"sync"

	itmbind "github.com/wippyai/itm-bind"
)

type Memory = itmbind.Memory
type Allocator = itmbind.Allocator

type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// AllocationList tracks guest allocations made for one call so they can be
// released together on every exit path.
type AllocationList struct {
	allocations []Allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 4)}
	},
}

func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 32

// Release returns to pool. Must call after Free(); list invalid after Release.
func (al *AllocationList) Release() {
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.Reset()
	allocationListPool.Put(al)
}

func (al *AllocationList) FreeAndRelease(allocator Allocator) {
	al.Free(allocator)
	al.Release()
}

func (al *AllocationList) Add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, Allocation{
		Ptr:   ptr,
		Size:  size,
		Align: align,
	})
}

func (al *AllocationList) Free(allocator Allocator) {
	if allocator == nil {
		return
	}
	for _, a := range al.allocations {
		if a.Ptr != 0 {
			allocator.Free(a.Ptr, a.Size, a.Align)
		}
	}
}

func (al *AllocationList) Reset() {
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}
