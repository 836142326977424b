// Package exactfit provides an allocator that hands out exactly the number of
// bytes requested, picking free blocks with a first, best, or worst fit
// policy.
package exactfit

import (
	"log"

	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/mem"
)

// A Block is a contiguous address range that is either free or allocated.
type Block struct {
	Start     uint64
	Size      uint64
	Allocated bool
	ID        alloc.BlockID
}

// End returns the first address after the block.
func (b Block) End() uint64 {
	return b.Start + b.Size
}

// Allocator is the exact-fit allocator. Its blocks are kept ordered by
// address and always tile the whole memory.
type Allocator struct {
	totalMemory uint64
	policy      FitPolicy
	blocks      []Block
	nextID      alloc.BlockID

	attempts            uint64
	successes           uint64
	failures            uint64
	deallocations       uint64
	failedDeallocations uint64
}

// TotalMemory returns the number of bytes managed.
func (a *Allocator) TotalMemory() uint64 {
	return a.totalMemory
}

// FitPolicy returns the active fit policy.
func (a *Allocator) FitPolicy() FitPolicy {
	return a.policy
}

// SetFitPolicy changes the policy used by later allocations.
func (a *Allocator) SetFitPolicy(p FitPolicy) {
	a.policy = p
}

// Blocks returns a copy of the block list, ordered by address.
func (a *Allocator) Blocks() []Block {
	blocks := make([]Block, len(a.blocks))
	copy(blocks, a.blocks)

	return blocks
}

// Allocate reserves size bytes and returns the ID of the new block.
func (a *Allocator) Allocate(size uint64) (alloc.BlockID, error) {
	a.attempts++

	if size == 0 {
		a.failures++
		return 0, mem.NewError(mem.ZeroSizeRequest, "cannot allocate 0 bytes")
	}

	index := a.policy.findBlock(a.blocks, size)
	if index < 0 {
		a.failures++
		return 0, mem.NewError(mem.InsufficientMemory,
			"no free block can hold %d bytes", size)
	}

	a.split(index, size)

	id := a.nextID
	a.nextID++

	a.blocks[index].Allocated = true
	a.blocks[index].ID = id
	a.successes++

	return id, nil
}

func (a *Allocator) split(index int, size uint64) {
	b := a.blocks[index]
	if b.Size == size {
		return
	}

	rest := Block{
		Start: b.Start + size,
		Size:  b.Size - size,
	}
	a.blocks[index].Size = size

	a.blocks = append(a.blocks, Block{})
	copy(a.blocks[index+2:], a.blocks[index+1:])
	a.blocks[index+1] = rest
}

// Deallocate frees the block with the given ID and merges adjacent free
// blocks.
func (a *Allocator) Deallocate(id alloc.BlockID) error {
	index := a.findAllocated(id)
	if index < 0 {
		a.failedDeallocations++
		return mem.NewError(mem.UnknownBlockID, "block %d not found", id)
	}

	a.blocks[index].Allocated = false
	a.blocks[index].ID = 0
	a.deallocations++

	a.coalesce()

	return nil
}

func (a *Allocator) findAllocated(id alloc.BlockID) int {
	for i, b := range a.blocks {
		if b.Allocated && b.ID == id {
			return i
		}
	}

	return -1
}

func (a *Allocator) coalesce() {
	merged := a.blocks[:1]

	for _, b := range a.blocks[1:] {
		last := &merged[len(merged)-1]
		if !last.Allocated && !b.Allocated {
			last.Size += b.Size
			continue
		}

		merged = append(merged, b)
	}

	a.blocks = merged
	a.mustTileMemory()
}

func (a *Allocator) mustTileMemory() {
	next := uint64(0)
	for _, b := range a.blocks {
		if b.Start != next || b.Size == 0 {
			log.Panicf("block list broken at 0x%x", b.Start)
		}

		next = b.End()
	}

	if next != a.totalMemory {
		log.Panicf("block list covers %d bytes, want %d", next, a.totalMemory)
	}
}

// Stats returns the allocator statistics.
func (a *Allocator) Stats() alloc.Stats {
	s := alloc.Stats{
		Kind:                alloc.ExactFit,
		TotalMemory:         a.totalMemory,
		Attempts:            a.attempts,
		Successes:           a.successes,
		Failures:            a.failures,
		Deallocations:       a.deallocations,
		FailedDeallocations: a.failedDeallocations,
	}

	largestFree := uint64(0)
	for _, b := range a.blocks {
		if b.Allocated {
			s.Used += b.Size
			s.LiveAllocations++

			continue
		}

		s.Free += b.Size
		s.FreeBlocks++

		if b.Size > largestFree {
			largestFree = b.Size
		}
	}

	if s.Free > 0 {
		s.Fragmentation = float64(s.Free-largestFree) / float64(s.Free) * 100
	}

	return s
}

// Reset returns the allocator to a single free block and clears all the
// counters. The fit policy is kept.
func (a *Allocator) Reset() {
	a.blocks = []Block{{Start: 0, Size: a.totalMemory}}
	a.nextID = 1
	a.attempts = 0
	a.successes = 0
	a.failures = 0
	a.deallocations = 0
	a.failedDeallocations = 0
}
