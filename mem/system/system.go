// Package system ties the allocators, the paging system and the cache
// hierarchy together behind the operations a driver issues.
package system

import (
	"fmt"

	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/alloc/buddy"
	"github.com/sarchlab/memsim/mem/alloc/exactfit"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/pipeline"
	"github.com/sarchlab/memsim/mem/vm/paging"
	"github.com/sarchlab/memsim/sim/hooking"
)

// Mode selects the physical allocator.
type Mode int

// The supported allocator modes.
const (
	Classic Mode = iota
	Buddy
)

func (m Mode) String() string {
	if m == Buddy {
		return "buddy"
	}

	return "classic"
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "classic", "exact_fit", "":
		return Classic, nil
	case "buddy":
		return Buddy, nil
	}

	return Classic, mem.NewError(mem.InvalidConfig, "unknown memory mode %q", s)
}

// BuddyMinBlockSize is the min block size of the buddy allocators built by
// InitMemory.
const BuddyMinBlockSize = 16

// Stats gathers the statistics of every initialized component. Components
// that are not initialized have nil stats.
type Stats struct {
	Mode         Mode
	VMEnabled    bool
	CacheEnabled bool
	Allocator    *alloc.Stats
	VM           *paging.VmStats
	Cache        *cache.HierarchyStats
}

// System is the memory subsystem as seen by a driver.
type System struct {
	hooking.HookableBase

	mode       Mode
	fitPolicy  exactfit.FitPolicy
	exactFit   *exactfit.Allocator
	buddy      *buddy.Allocator
	allocator  alloc.Allocator
	vm         *paging.PagingSystem
	caches     *cache.Hierarchy
	pipeline   *pipeline.Pipeline
	levelHooks []hooking.Hook
	vmHooks    []hooking.Hook
}

// New creates a system with nothing initialized.
func New() *System {
	s := &System{}
	s.compose()

	return s
}

// AcceptComponentHook registers a hook on the paging system and on every
// cache level, including the ones created by later initializations.
func (s *System) AcceptComponentHook(hook hooking.Hook) {
	s.vmHooks = append(s.vmHooks, hook)
	s.levelHooks = append(s.levelHooks, hook)

	if s.vm != nil {
		s.vm.AcceptHook(hook)
	}

	if s.caches != nil {
		for _, l := range s.caches.Levels() {
			l.AcceptHook(hook)
		}
	}
}

// InitMemory creates the physical allocator. A buddy allocator needs a power
// of two size, so the size is rounded up and a warning is returned.
// Initializing again replaces the allocator and keeps the paging system and
// the caches.
func (s *System) InitMemory(size uint64, mode Mode) ([]mem.Warning, error) {
	if mode == Buddy {
		return s.initBuddy(size)
	}

	a, err := exactfit.MakeBuilder().
		WithTotalMemory(size).
		WithFitPolicy(s.fitPolicy).
		Build()
	if err != nil {
		return nil, fmt.Errorf("init memory: %w", err)
	}

	s.mode = Classic
	s.exactFit = a
	s.buddy = nil
	s.allocator = a

	return nil, nil
}

func (s *System) initBuddy(size uint64) ([]mem.Warning, error) {
	var warnings []mem.Warning

	if size > 0 && !mem.IsPowerOfTwo(size) {
		rounded, ok := mem.NextPowerOfTwo(size)
		if !ok {
			return nil, fmt.Errorf("init memory: %w", mem.NewError(
				mem.InvalidConfig,
				"buddy memory %d exceeds the largest block %d",
				size, mem.MaxPowerOfTwo))
		}

		warnings = append(warnings, mem.Warning{
			Kind: mem.NonPowerOfTwoConfig,
			Msg: fmt.Sprintf("buddy memory %d is not a power of two, using %d",
				size, rounded),
		})
		size = rounded
	}

	a, w, err := buddy.MakeBuilder().
		WithTotalMemory(size).
		WithMinBlockSize(BuddyMinBlockSize).
		WithStrictConfig(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("init memory: %w", err)
	}

	s.mode = Buddy
	s.exactFit = nil
	s.buddy = a
	s.allocator = a

	return append(warnings, w...), nil
}

// InitVirtualMemory enables address translation. The physical memory size
// is the size of the allocator.
func (s *System) InitVirtualMemory(
	vmSize, pageSize uint64,
	policy paging.Policy,
) ([]mem.Warning, error) {
	if s.allocator == nil {
		return nil, mem.NewError(mem.NotInitialized,
			"physical memory must be initialized before virtual memory")
	}

	vm, warnings, err := paging.MakeBuilder().
		WithVirtualMemorySize(vmSize).
		WithPhysicalMemorySize(s.allocator.TotalMemory()).
		WithPageSize(pageSize).
		WithPolicy(policy).
		Build()
	if err != nil {
		return nil, fmt.Errorf("init vm: %w", err)
	}

	for _, h := range s.vmHooks {
		vm.AcceptHook(h)
	}

	s.vm = vm
	s.compose()

	return warnings, nil
}

// InitCache enables the cache hierarchy.
func (s *System) InitCache(config cache.HierarchyConfig) error {
	h, err := cache.MakeHierarchyBuilder().WithConfig(config).Build()
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	for _, l := range h.Levels() {
		for _, hook := range s.levelHooks {
			l.AcceptHook(hook)
		}
	}

	s.caches = h
	s.compose()

	return nil
}

func (s *System) compose() {
	var translator pipeline.Translator
	if s.vm != nil {
		translator = s.vm
	}

	var probe pipeline.CacheProbe
	if s.caches != nil {
		probe = s.caches
	}

	s.pipeline = pipeline.New(translator, probe)
}

// Allocate reserves size bytes of physical memory.
func (s *System) Allocate(size uint64) (alloc.BlockID, error) {
	var (
		id  alloc.BlockID
		err error
	)

	if s.allocator == nil {
		err = mem.NewError(mem.NotInitialized, "no memory allocator")
	} else {
		id, err = s.allocator.Allocate(size)
	}

	s.invoke(hooking.HookPosAllocate, AllocationEvent{Size: size, ID: id, Err: err})

	return id, err
}

// Deallocate releases a block.
func (s *System) Deallocate(id alloc.BlockID) error {
	var err error

	if s.allocator == nil {
		err = mem.NewError(mem.NotInitialized, "no memory allocator")
	} else {
		err = s.allocator.Deallocate(id)
	}

	s.invoke(hooking.HookPosDeallocate, DeallocationEvent{ID: id, Err: err})

	return err
}

// Access reads or writes addr through translation, then the caches, then the
// memory.
func (s *System) Access(addr uint64, isWrite bool) (pipeline.AccessReport, error) {
	report, err := s.pipeline.Access(addr, isWrite)

	s.invoke(hooking.HookPosAccess, AccessEvent{
		Address: addr,
		IsWrite: isWrite,
		Report:  report,
		Err:     err,
	})

	return report, err
}

func (s *System) invoke(pos *hooking.HookPos, item any) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
	})
}

// SetFitPolicy changes the policy of the exact-fit allocator.
func (s *System) SetFitPolicy(p exactfit.FitPolicy) error {
	if s.allocator != nil && s.mode == Buddy {
		return mem.NewError(mem.InvalidConfig,
			"the buddy allocator does not use fit policies")
	}

	if s.exactFit == nil {
		return mem.NewError(mem.NotInitialized, "no exact-fit allocator")
	}

	s.fitPolicy = p
	s.exactFit.SetFitPolicy(p)

	return nil
}

// SetPagePolicy changes the page replacement policy.
func (s *System) SetPagePolicy(p paging.Policy) error {
	if s.vm == nil {
		return mem.NewError(mem.NotInitialized, "virtual memory is not enabled")
	}

	s.vm.SetPolicy(p)

	return nil
}

// Mode returns the allocator mode.
func (s *System) Mode() Mode {
	return s.mode
}

// MemoryInitialized tells if an allocator exists.
func (s *System) MemoryInitialized() bool {
	return s.allocator != nil
}

// ExactFit returns the exact-fit allocator, or nil.
func (s *System) ExactFit() *exactfit.Allocator {
	return s.exactFit
}

// Buddy returns the buddy allocator, or nil.
func (s *System) Buddy() *buddy.Allocator {
	return s.buddy
}

// VM returns the paging system, or nil.
func (s *System) VM() *paging.PagingSystem {
	return s.vm
}

// Caches returns the cache hierarchy, or nil.
func (s *System) Caches() *cache.Hierarchy {
	return s.caches
}

// Stats returns the statistics of every initialized component.
func (s *System) Stats() Stats {
	st := Stats{
		Mode:         s.mode,
		VMEnabled:    s.vm != nil,
		CacheEnabled: s.caches != nil,
	}

	if s.allocator != nil {
		a := s.allocator.Stats()
		st.Allocator = &a
	}

	if s.vm != nil {
		v := s.vm.Stats()
		st.VM = &v
	}

	if s.caches != nil {
		c := s.caches.Stats()
		st.Cache = &c
	}

	return st
}

// Reset brings every component back to its initial configuration.
func (s *System) Reset() {
	if s.allocator != nil {
		s.allocator.Reset()
	}

	if s.vm != nil {
		s.vm.Reset()
	}

	if s.caches != nil {
		s.caches.Reset()
	}
}

// Clear tears down every component. Hooks stay registered.
func (s *System) Clear() {
	s.mode = Classic
	s.fitPolicy = exactfit.FirstFit
	s.exactFit = nil
	s.buddy = nil
	s.allocator = nil
	s.vm = nil
	s.caches = nil
	s.compose()
}
