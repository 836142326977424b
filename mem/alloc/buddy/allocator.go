// Package buddy provides a binary buddy allocator.
package buddy

import (
	"log"
	"slices"

	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/mem"
)

// An AllocationRecord describes a live allocation.
type AllocationRecord struct {
	Address       uint64
	RequestedSize uint64
	ActualSize    uint64
	Order         int
}

// InternalFragmentation returns the bytes wasted by rounding the request up.
func (r AllocationRecord) InternalFragmentation() uint64 {
	return r.ActualSize - r.RequestedSize
}

// Allocator manages memory as power-of-two blocks. A block of order k has
// the size minBlockSize << k.
type Allocator struct {
	totalMemory  uint64
	minBlockSize uint64
	maxOrder     int

	freeLists [][]uint64
	records   map[alloc.BlockID]AllocationRecord
	nextID    alloc.BlockID

	attempts            uint64
	successes           uint64
	failures            uint64
	deallocations       uint64
	failedDeallocations uint64
	splits              uint64
	merges              uint64
	internalFrag        uint64
}

// TotalMemory returns the number of bytes managed by the allocator.
func (a *Allocator) TotalMemory() uint64 {
	return a.totalMemory
}

// MinBlockSize returns the size of an order 0 block.
func (a *Allocator) MinBlockSize() uint64 {
	return a.minBlockSize
}

// MaxOrder returns the order of the block that spans the whole memory.
func (a *Allocator) MaxOrder() int {
	return a.maxOrder
}

// BlockSize returns the size of a block of the given order.
func (a *Allocator) BlockSize(order int) uint64 {
	return a.minBlockSize << uint(order)
}

// FreeLists returns a copy of the free block addresses, indexed by order.
func (a *Allocator) FreeLists() [][]uint64 {
	lists := make([][]uint64, len(a.freeLists))
	for i, l := range a.freeLists {
		lists[i] = slices.Clone(l)
	}

	return lists
}

// Records returns a copy of the live allocations.
func (a *Allocator) Records() map[alloc.BlockID]AllocationRecord {
	records := make(map[alloc.BlockID]AllocationRecord, len(a.records))
	for id, r := range a.records {
		records[id] = r
	}

	return records
}

// Allocate reserves a block large enough to hold size bytes.
func (a *Allocator) Allocate(size uint64) (alloc.BlockID, error) {
	a.attempts++

	if size == 0 {
		a.failures++
		return 0, mem.NewError(mem.ZeroSizeRequest, "cannot allocate 0 bytes")
	}

	if size > a.totalMemory {
		a.failures++
		return 0, mem.NewError(mem.InsufficientMemory,
			"request of %d bytes exceeds total memory %d",
			size, a.totalMemory)
	}

	rounded, _ := mem.NextPowerOfTwo(size)
	actual := max(rounded, a.minBlockSize)
	order := a.orderOf(actual)

	from := a.smallestFreeOrder(order)
	if from < 0 {
		a.failures++
		return 0, mem.NewError(mem.InsufficientMemory,
			"no free block of order %d or above for %d bytes", order, size)
	}

	for j := from; j > order; j-- {
		a.split(j)
	}

	addr := a.freeLists[order][0]
	a.freeLists[order] = a.freeLists[order][1:]

	id := a.nextID
	a.nextID++

	a.records[id] = AllocationRecord{
		Address:       addr,
		RequestedSize: size,
		ActualSize:    actual,
		Order:         order,
	}
	a.internalFrag += actual - size
	a.successes++

	return id, nil
}

func (a *Allocator) orderOf(size uint64) int {
	order := 0
	for n := size / a.minBlockSize; n > 1; n >>= 1 {
		order++
	}

	return order
}

func (a *Allocator) smallestFreeOrder(order int) int {
	for j := order; j <= a.maxOrder; j++ {
		if len(a.freeLists[j]) > 0 {
			return j
		}
	}

	return -1
}

// split breaks the lowest-address block of the given order into two buddies
// of the order below.
func (a *Allocator) split(order int) {
	addr := a.freeLists[order][0]
	a.freeLists[order] = a.freeLists[order][1:]

	half := a.BlockSize(order - 1)
	a.insertFree(order-1, addr)
	a.insertFree(order-1, addr+half)

	a.splits++
}

func (a *Allocator) insertFree(order int, addr uint64) {
	list := a.freeLists[order]

	i, found := slices.BinarySearch(list, addr)
	if found {
		log.Panicf("block 0x%x of order %d is already free", addr, order)
	}

	a.freeLists[order] = slices.Insert(list, i, addr)
}

func (a *Allocator) removeFree(order int, addr uint64) bool {
	list := a.freeLists[order]

	i, found := slices.BinarySearch(list, addr)
	if !found {
		return false
	}

	a.freeLists[order] = slices.Delete(list, i, i+1)

	return true
}

// Deallocate returns a block to the free lists, merging it with its buddy as
// long as the buddy is also free.
func (a *Allocator) Deallocate(id alloc.BlockID) error {
	record, ok := a.records[id]
	if !ok {
		a.failedDeallocations++
		return mem.NewError(mem.UnknownBlockID, "block %d is not allocated", id)
	}

	delete(a.records, id)
	a.deallocations++
	a.internalFrag -= record.InternalFragmentation()

	addr := record.Address
	order := record.Order
	a.insertFree(order, addr)

	for order < a.maxOrder {
		buddy := addr ^ a.BlockSize(order)
		if !a.removeFree(order, buddy) {
			break
		}

		a.removeFree(order, addr)

		addr = min(addr, buddy)
		order++
		a.insertFree(order, addr)
		a.merges++
	}

	return nil
}

// Stats returns the current statistics. Fragmentation is the total internal
// fragmentation in bytes.
func (a *Allocator) Stats() alloc.Stats {
	var free, smallBlocks uint64

	for order, list := range a.freeLists {
		free += uint64(len(list)) * a.BlockSize(order)

		if order < a.maxOrder {
			smallBlocks += uint64(len(list))
		}
	}

	return alloc.Stats{
		Kind:                alloc.Buddy,
		TotalMemory:         a.totalMemory,
		Used:                a.totalMemory - free,
		Free:                free,
		Fragmentation:       float64(a.internalFrag),
		Attempts:            a.attempts,
		Successes:           a.successes,
		Failures:            a.failures,
		Deallocations:       a.deallocations,
		FailedDeallocations: a.failedDeallocations,
		LiveAllocations:     uint64(len(a.records)),
		FreeBlocks:          smallBlocks,
		Splits:              a.splits,
		Merges:              a.merges,
	}
}

// Reset restores the single free block that spans the whole memory.
func (a *Allocator) Reset() {
	a.freeLists = make([][]uint64, a.maxOrder+1)
	a.freeLists[a.maxOrder] = []uint64{0}
	a.records = make(map[alloc.BlockID]AllocationRecord)
	a.nextID = 1

	a.attempts = 0
	a.successes = 0
	a.failures = 0
	a.deallocations = 0
	a.failedDeallocations = 0
	a.splits = 0
	a.merges = 0
	a.internalFrag = 0
}
