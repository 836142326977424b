// Package trace provides hooks that record the activity of the memory system.
package trace

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/system"
	"github.com/sarchlab/memsim/mem/vm/paging"
	"github.com/sarchlab/memsim/sim/hooking"
)

// allocationEntry is a row of the allocations table.
type allocationEntry struct {
	RunID string
	Seq   uint64
	Op    string
	Size  uint64
	Block uint64
	OK    bool
	Error string
}

// accessEntry is a row of the accesses table.
type accessEntry struct {
	RunID           string
	Seq             uint64
	Kind            string
	VirtualAddress  uint64
	PhysicalAddress uint64
	PageFault       bool
	HitLevel        int
	TouchedMemory   bool
	MemoryWrite     bool
	PenaltyCycles   uint64
	OK              bool
	Error           string
}

// pageFaultEntry is a row of the page_faults table.
type pageFaultEntry struct {
	RunID        string
	Seq          uint64
	Page         int
	Frame        int
	EvictedPage  int
	EvictedDirty bool
}

// cacheEvictionEntry is a row of the cache_evictions table.
type cacheEvictionEntry struct {
	RunID     string
	Seq       uint64
	Level     string
	Address   uint64
	Dirty     bool
	WroteBack bool
}

// MapTables lets the reader query the tables written by NewDBTracer.
func MapTables(reader datarecording.DataReader) {
	reader.MapTable("allocations", allocationEntry{})
	reader.MapTable("accesses", accessEntry{})
	reader.MapTable("page_faults", pageFaultEntry{})
	reader.MapTable("cache_evictions", cacheEvictionEntry{})
}

// A tracer is a hook that prints one line per memory system event.
type tracer struct {
	logger *log.Logger
	seq    uint64
}

// NewTracer creates a hook that writes the events it sees to the logger.
func NewTracer(logger *log.Logger) hooking.Hook {
	return &tracer{logger: logger}
}

// Func prints the event.
func (t *tracer) Func(ctx hooking.HookCtx) {
	t.seq++

	switch e := ctx.Item.(type) {
	case system.AllocationEvent:
		t.logger.Printf("alloc, %d, %d, %d, %s\n",
			t.seq, e.Size, e.ID, status(e.Err))
	case system.DeallocationEvent:
		t.logger.Printf("free, %d, %d, %s\n", t.seq, e.ID, status(e.Err))
	case system.AccessEvent:
		t.logger.Printf("access, %d, %s, 0x%x, 0x%x, %d, %s\n",
			t.seq,
			kindName(e.IsWrite),
			e.Address,
			e.Report.PhysicalAddress,
			hitLevel(e.Report),
			status(e.Err))
	case paging.Fault:
		page, dirty := evicted(e)
		t.logger.Printf("fault, %d, %d, %d, %d, %t\n",
			t.seq, e.Page, e.Frame, page, dirty)
	case cache.Eviction:
		t.logger.Printf("evict, %d, %s, 0x%x, %t\n",
			t.seq, e.Level, e.Address, e.Dirty)
	default:
		t.seq--
	}
}

// A dbTracer is a hook that records the events of the memory system into
// a database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
	runID        string
	seq          uint64
}

// NewDBTracer creates a hook that inserts one row per event. All the rows
// written by the tracer share a run ID.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
		runID:        xid.New().String(),
	}

	t.dataRecorder.CreateTable("allocations", allocationEntry{})
	t.dataRecorder.CreateTable("accesses", accessEntry{})
	t.dataRecorder.CreateTable("page_faults", pageFaultEntry{})
	t.dataRecorder.CreateTable("cache_evictions", cacheEvictionEntry{})

	return t
}

// Func inserts the event.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	t.seq++

	switch e := ctx.Item.(type) {
	case system.AllocationEvent:
		t.dataRecorder.InsertData("allocations", allocationEntry{
			RunID: t.runID,
			Seq:   t.seq,
			Op:    "alloc",
			Size:  e.Size,
			Block: uint64(e.ID),
			OK:    e.Err == nil,
			Error: errorText(e.Err),
		})
	case system.DeallocationEvent:
		t.dataRecorder.InsertData("allocations", allocationEntry{
			RunID: t.runID,
			Seq:   t.seq,
			Op:    "free",
			Block: uint64(e.ID),
			OK:    e.Err == nil,
			Error: errorText(e.Err),
		})
	case system.AccessEvent:
		t.insertAccess(e)
	case paging.Fault:
		page, dirty := evicted(e)
		t.dataRecorder.InsertData("page_faults", pageFaultEntry{
			RunID:        t.runID,
			Seq:          t.seq,
			Page:         e.Page,
			Frame:        e.Frame,
			EvictedPage:  page,
			EvictedDirty: dirty,
		})
	case cache.Eviction:
		t.dataRecorder.InsertData("cache_evictions", cacheEvictionEntry{
			RunID:     t.runID,
			Seq:       t.seq,
			Level:     e.Level,
			Address:   e.Address,
			Dirty:     e.Dirty,
			WroteBack: e.WroteBack,
		})
	default:
		t.seq--
	}
}

func (t *dbTracer) insertAccess(e system.AccessEvent) {
	entry := accessEntry{
		RunID:           t.runID,
		Seq:             t.seq,
		Kind:            kindName(e.IsWrite),
		VirtualAddress:  e.Address,
		PhysicalAddress: e.Report.PhysicalAddress,
		HitLevel:        hitLevel(e.Report),
		TouchedMemory:   e.Report.TouchedBackingStore,
		MemoryWrite:     e.Report.MemoryWrite,
		OK:              e.Err == nil,
		Error:           errorText(e.Err),
	}

	if e.Report.Translation != nil {
		entry.PageFault = e.Report.Translation.Fault
	}

	if e.Report.Cache != nil {
		entry.PenaltyCycles = e.Report.Cache.PenaltyCycles
	}

	t.dataRecorder.InsertData("accesses", entry)
}
