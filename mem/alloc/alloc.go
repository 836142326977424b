// Package alloc defines what the physical memory allocators of the simulator
// have in common.
package alloc

// BlockID identifies an allocation. IDs start at 1 and increase
// monotonically for the lifetime of an allocator, until it is reset.
type BlockID uint64

// Kind tells which allocation algorithm an allocator runs.
type Kind int

// The supported allocator kinds.
const (
	ExactFit Kind = iota
	Buddy
)

func (k Kind) String() string {
	if k == Buddy {
		return "buddy"
	}

	return "exact-fit"
}

// An Allocator hands out address ranges of a simulated physical memory.
type Allocator interface {
	Allocate(size uint64) (BlockID, error)
	Deallocate(id BlockID) error
	Stats() Stats
	Reset()
	TotalMemory() uint64
}

// Stats is the statistics projection shared by all the allocators.
//
// Fragmentation is the external fragmentation percentage for the exact-fit
// allocator and the total internal fragmentation in bytes for the buddy
// allocator. Kind tells which one applies.
type Stats struct {
	Kind          Kind
	TotalMemory   uint64
	Used          uint64
	Free          uint64
	Fragmentation float64

	Attempts  uint64
	Successes uint64
	Failures  uint64

	Deallocations       uint64
	FailedDeallocations uint64
	LiveAllocations     uint64
	FreeBlocks          uint64

	Splits uint64
	Merges uint64
}

// SuccessRate returns the percentage of successful allocation attempts.
func (s Stats) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}

	return float64(s.Successes) / float64(s.Attempts) * 100
}
