package cache

import (
	"github.com/sarchlab/memsim/mem/mem"
)

// LevelOutcome tells whether a level hit during an access.
type LevelOutcome struct {
	Name string
	Hit  bool
}

// AccessResult describes one access through the hierarchy. Levels lists the
// levels in the order they were probed. HitLevel is 1 for L1, 2 for L2, 3 for
// L3, and 0 when the access had to go to memory.
type AccessResult struct {
	Kind                mem.AccessKind
	Levels              []LevelOutcome
	HitLevel            int
	TouchedBackingStore bool
	MemoryWrite         bool
	Writebacks          uint64
	PenaltyCycles       uint64
}

// HierarchyStats are the counters of the whole hierarchy.
type HierarchyStats struct {
	Levels             []LevelStats
	TotalAccesses      uint64
	Reads              uint64
	Writes             uint64
	L1Hits             uint64
	L2Hits             uint64
	L3Hits             uint64
	MemoryAccesses     uint64
	MemoryWrites       uint64
	Writebacks         uint64
	PenaltyCycles      uint64
	HitRatio           float64
	AvgCyclesPerAccess float64
}

// Hierarchy chains up to three cache levels in front of the memory. Lines
// found in a farther level are filled into every closer level.
type Hierarchy struct {
	config    HierarchyConfig
	penalties Penalties
	levels    []*Cache

	totalAccesses  uint64
	reads          uint64
	writes         uint64
	levelHits      []uint64
	memoryAccesses uint64
	memoryWrites   uint64
	penaltyCycles  uint64
}

// Config returns the configuration the hierarchy was built with.
func (h *Hierarchy) Config() HierarchyConfig {
	return h.config
}

// Penalties returns the cycles charged per level.
func (h *Hierarchy) Penalties() Penalties {
	return h.penalties
}

// Levels returns the cache levels, L1 first.
func (h *Hierarchy) Levels() []*Cache {
	return h.levels
}

// Read reads addr through the hierarchy.
func (h *Hierarchy) Read(addr uint64) AccessResult {
	return h.access(addr, false)
}

// Write writes addr through the hierarchy. Every level allocates on a write
// miss. The write policy of L1 decides whether filled lines are dirty and
// whether the write goes to memory right away.
func (h *Hierarchy) Write(addr uint64) AccessResult {
	return h.access(addr, true)
}

func (h *Hierarchy) access(addr uint64, isWrite bool) AccessResult {
	h.totalAccesses++
	if isWrite {
		h.writes++
	} else {
		h.reads++
	}

	writeThrough := h.levels[0].config.Write == WriteThrough
	dirtyFill := isWrite && !writeThrough
	writebacksBefore := h.totalWritebacks()

	res := AccessResult{
		Kind:   mem.AccessKindOf(isWrite),
		Levels: make([]LevelOutcome, 0, len(h.levels)),
	}

	hitAt := -1

	for i, level := range h.levels {
		var hit bool
		if isWrite {
			hit = level.Write(addr)
		} else {
			hit = level.Read(addr)
		}

		res.Levels = append(res.Levels, LevelOutcome{Name: level.Name(), Hit: hit})
		res.PenaltyCycles += h.penalties.level(i)

		if hit {
			hitAt = i
			break
		}
	}

	fillFrom := hitAt
	if hitAt < 0 {
		h.memoryAccesses++
		res.TouchedBackingStore = true
		res.PenaltyCycles += h.penalties.Memory
		fillFrom = len(h.levels)
	} else {
		h.levelHits[hitAt]++
		res.HitLevel = hitAt + 1
	}

	for j := fillFrom - 1; j >= 0; j-- {
		h.levels[j].Insert(addr, dirtyFill)
	}

	if isWrite && writeThrough {
		h.memoryWrites++
		res.MemoryWrite = true
	}

	res.Writebacks = h.totalWritebacks() - writebacksBefore
	h.penaltyCycles += res.PenaltyCycles

	return res
}

func (h *Hierarchy) totalWritebacks() uint64 {
	var n uint64
	for _, l := range h.levels {
		n += l.writebacks
	}

	return n
}

func (h *Hierarchy) hitsAt(i int) uint64 {
	if i >= len(h.levelHits) {
		return 0
	}

	return h.levelHits[i]
}

// Stats returns the counters of the hierarchy and of every level.
func (h *Hierarchy) Stats() HierarchyStats {
	s := HierarchyStats{
		TotalAccesses:  h.totalAccesses,
		Reads:          h.reads,
		Writes:         h.writes,
		L1Hits:         h.hitsAt(0),
		L2Hits:         h.hitsAt(1),
		L3Hits:         h.hitsAt(2),
		MemoryAccesses: h.memoryAccesses,
		MemoryWrites:   h.memoryWrites,
		Writebacks:     h.totalWritebacks(),
		PenaltyCycles:  h.penaltyCycles,
	}

	for _, l := range h.levels {
		s.Levels = append(s.Levels, l.Stats())
	}

	if h.totalAccesses > 0 {
		hits := s.L1Hits + s.L2Hits + s.L3Hits
		s.HitRatio = float64(hits) / float64(h.totalAccesses) * 100
		s.AvgCyclesPerAccess =
			float64(h.penaltyCycles) / float64(h.totalAccesses)
	}

	return s
}

// Reset clears every level and every counter.
func (h *Hierarchy) Reset() {
	for _, l := range h.levels {
		l.Reset()
	}

	h.totalAccesses = 0
	h.reads = 0
	h.writes = 0
	h.levelHits = make([]uint64, len(h.levels))
	h.memoryAccesses = 0
	h.memoryWrites = 0
	h.penaltyCycles = 0
}
