// Package paging translates virtual addresses with a single-level page table
// and demand paging.
package paging

import (
	"log"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/sim/hooking"
)

// A PageTableEntry tells where a virtual page lives.
type PageTableEntry struct {
	Valid       bool
	Frame       int
	Dirty       bool
	LoadTime    uint64
	LastAccess  uint64
	AccessCount uint64
}

// A Frame is a physical page slot.
type Frame struct {
	Occupied bool
	Page     int
}

// EvictedPage describes a page that was pushed out to make room.
type EvictedPage struct {
	Page  int
	Frame int
	Dirty bool
}

// A Translation is the result of a successful address translation.
type Translation struct {
	VirtualAddress  uint64
	PhysicalAddress uint64
	Page            int
	Frame           int
	Offset          uint64
	Fault           bool
	Evicted         *EvictedPage
}

// A Fault is the item of the hooks invoked at HookPosPageFault.
type Fault struct {
	Page    int
	Frame   int
	Evicted *EvictedPage
}

// VmStats are the counters of a paging system.
type VmStats struct {
	Faults        uint64
	Hits          uint64
	DiskReads     uint64
	DiskWrites    uint64
	FramesUsed    uint64
	TotalAccesses uint64
	NumPages      uint64
	NumFrames     uint64
	HitRate       float64
	FaultRate     float64
}

// PagingSystem maps virtual pages onto a smaller set of physical frames.
type PagingSystem struct {
	hooking.HookableBase

	vmSize    uint64
	pageSize  uint64
	numPages  int
	numFrames int
	policy    Policy

	pageTable []PageTableEntry
	frames    []Frame
	clock     uint64

	faults        uint64
	hits          uint64
	diskReads     uint64
	diskWrites    uint64
	totalAccesses uint64
}

// VirtualMemorySize returns the number of addressable virtual bytes.
func (p *PagingSystem) VirtualMemorySize() uint64 {
	return p.vmSize
}

// PhysicalMemorySize returns the number of bytes covered by the frames.
func (p *PagingSystem) PhysicalMemorySize() uint64 {
	return uint64(p.numFrames) * p.pageSize
}

// PageSize returns the size of a page.
func (p *PagingSystem) PageSize() uint64 {
	return p.pageSize
}

// Policy returns the current replacement policy.
func (p *PagingSystem) Policy() Policy {
	return p.policy
}

// SetPolicy changes the replacement policy. The page table is kept.
func (p *PagingSystem) SetPolicy(policy Policy) {
	p.policy = policy
}

// PageTable returns a copy of the page table.
func (p *PagingSystem) PageTable() []PageTableEntry {
	return append([]PageTableEntry(nil), p.pageTable...)
}

// Frames returns a copy of the frame table.
func (p *PagingSystem) Frames() []Frame {
	return append([]Frame(nil), p.frames...)
}

// Translate converts a virtual address into a physical address, loading the
// page on a fault.
func (p *PagingSystem) Translate(vAddr uint64) (Translation, error) {
	return p.translate(vAddr, false)
}

// TranslateWrite is Translate for a write. The page becomes dirty and will
// be written to disk when it is evicted.
func (p *PagingSystem) TranslateWrite(vAddr uint64) (Translation, error) {
	return p.translate(vAddr, true)
}

func (p *PagingSystem) translate(vAddr uint64, isWrite bool) (Translation, error) {
	p.totalAccesses++
	p.clock++

	if vAddr >= p.vmSize {
		return Translation{}, mem.NewError(mem.InvalidVirtualAddress,
			"address 0x%x exceeds virtual memory size 0x%x", vAddr, p.vmSize)
	}

	page := int(vAddr / p.pageSize)
	offset := vAddr % p.pageSize

	t := Translation{
		VirtualAddress: vAddr,
		Page:           page,
		Offset:         offset,
	}

	pte := &p.pageTable[page]
	if pte.Valid {
		p.hits++
		pte.LastAccess = p.clock
		pte.AccessCount++
	} else {
		p.faults++
		t.Fault = true
		t.Evicted = p.handlePageFault(page)
	}

	if isWrite {
		pte.Dirty = true
	}

	t.Frame = pte.Frame
	t.PhysicalAddress = uint64(pte.Frame)*p.pageSize + offset

	return t, nil
}

func (p *PagingSystem) handlePageFault(page int) *EvictedPage {
	var evicted *EvictedPage

	frame := p.findFreeFrame()
	if frame < 0 {
		victim := p.selectVictim()
		evicted = p.evict(victim)
		frame = evicted.Frame
	}

	p.load(page, frame)

	if p.NumHooks() > 0 {
		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    hooking.HookPosPageFault,
			Item: Fault{
				Page:    page,
				Frame:   frame,
				Evicted: evicted,
			},
		})
	}

	return evicted
}

func (p *PagingSystem) findFreeFrame() int {
	for i, f := range p.frames {
		if !f.Occupied {
			return i
		}
	}

	return -1
}

func (p *PagingSystem) selectVictim() int {
	victim := -1

	var best uint64

	for page, e := range p.pageTable {
		if !e.Valid {
			continue
		}

		key := e.LoadTime
		if p.policy == LRU {
			key = e.LastAccess
		}

		if victim < 0 || key < best {
			victim = page
			best = key
		}
	}

	if victim < 0 {
		log.Panicf("no resident page to evict")
	}

	return victim
}

func (p *PagingSystem) evict(page int) *EvictedPage {
	pte := &p.pageTable[page]

	evicted := &EvictedPage{
		Page:  page,
		Frame: pte.Frame,
		Dirty: pte.Dirty,
	}

	if pte.Dirty {
		p.diskWrites++
	}

	p.frames[pte.Frame] = Frame{Page: -1}

	pte.Valid = false
	pte.Frame = -1
	pte.Dirty = false

	return evicted
}

func (p *PagingSystem) load(page, frame int) {
	p.diskReads++

	pte := &p.pageTable[page]
	pte.Valid = true
	pte.Frame = frame
	pte.Dirty = false
	pte.LoadTime = p.clock
	pte.LastAccess = p.clock
	pte.AccessCount++

	p.frames[frame] = Frame{Occupied: true, Page: page}
}

// Stats returns the counters of the paging system.
func (p *PagingSystem) Stats() VmStats {
	s := VmStats{
		Faults:        p.faults,
		Hits:          p.hits,
		DiskReads:     p.diskReads,
		DiskWrites:    p.diskWrites,
		TotalAccesses: p.totalAccesses,
		NumPages:      uint64(p.numPages),
		NumFrames:     uint64(p.numFrames),
	}

	for _, f := range p.frames {
		if f.Occupied {
			s.FramesUsed++
		}
	}

	if p.totalAccesses > 0 {
		s.HitRate = float64(p.hits) / float64(p.totalAccesses) * 100
		s.FaultRate = float64(p.faults) / float64(p.totalAccesses) * 100
	}

	return s
}

// ClearStats resets the counters but keeps the resident pages.
func (p *PagingSystem) ClearStats() {
	p.faults = 0
	p.hits = 0
	p.diskReads = 0
	p.diskWrites = 0
	p.totalAccesses = 0
}

// Reset empties every frame and clears the counters.
func (p *PagingSystem) Reset() {
	p.pageTable = make([]PageTableEntry, p.numPages)
	for i := range p.pageTable {
		p.pageTable[i].Frame = -1
	}

	p.frames = make([]Frame, p.numFrames)
	for i := range p.frames {
		p.frames[i].Page = -1
	}

	p.clock = 0
	p.ClearStats()
}

// checkMapping panics if the page table and the frame table disagree.
func (p *PagingSystem) checkMapping() {
	resident := 0

	for page, e := range p.pageTable {
		if !e.Valid {
			continue
		}

		resident++

		if e.Frame < 0 || e.Frame >= p.numFrames {
			log.Panicf("page %d maps to frame %d, out of range", page, e.Frame)
		}

		if f := p.frames[e.Frame]; !f.Occupied || f.Page != page {
			log.Panicf("page %d maps to frame %d, which holds page %d",
				page, e.Frame, f.Page)
		}
	}

	for _, f := range p.frames {
		if f.Occupied {
			resident--
		}
	}

	if resident != 0 {
		log.Panicf("frame table and page table disagree on resident pages")
	}
}
