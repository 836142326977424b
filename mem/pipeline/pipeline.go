// Package pipeline composes address translation, caching and the backing
// store into the only path an access can take.
package pipeline

import (
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/vm/paging"
)

// A Translator converts virtual addresses into physical addresses.
type Translator interface {
	Translate(vAddr uint64) (paging.Translation, error)
	TranslateWrite(vAddr uint64) (paging.Translation, error)
}

// A CacheProbe looks up physical addresses in a cache hierarchy.
type CacheProbe interface {
	Read(addr uint64) cache.AccessResult
	Write(addr uint64) cache.AccessResult
}

// AccessReport describes how one access went through the pipeline.
type AccessReport struct {
	Kind                mem.AccessKind
	VirtualAddress      uint64
	PhysicalAddress     uint64
	Translated          bool
	Translation         *paging.Translation
	Cached              bool
	Cache               *cache.AccessResult
	TouchedBackingStore bool
	MemoryWrite         bool
}

// Pipeline runs every access through translation, then the caches, then the
// backing store.
type Pipeline struct {
	translator Translator
	cache      CacheProbe
}

// New creates a pipeline. A nil translator disables translation and a nil
// cache disables caching.
func New(translator Translator, cache CacheProbe) *Pipeline {
	return &Pipeline{
		translator: translator,
		cache:      cache,
	}
}

// TranslationEnabled tells if addresses are translated.
func (p *Pipeline) TranslationEnabled() bool {
	return p.translator != nil
}

// CachingEnabled tells if accesses go through a cache hierarchy.
func (p *Pipeline) CachingEnabled() bool {
	return p.cache != nil
}

// Access performs a read or a write at addr. A translation failure aborts the
// access before the caches are probed.
func (p *Pipeline) Access(addr uint64, isWrite bool) (AccessReport, error) {
	report := AccessReport{
		Kind:            mem.AccessKindOf(isWrite),
		VirtualAddress:  addr,
		PhysicalAddress: addr,
	}

	if p.translator != nil {
		t, err := p.translate(addr, isWrite)
		if err != nil {
			return AccessReport{}, err
		}

		report.Translated = true
		report.Translation = &t
		report.PhysicalAddress = t.PhysicalAddress
	}

	if p.cache == nil {
		report.TouchedBackingStore = true
		report.MemoryWrite = isWrite

		return report, nil
	}

	var res cache.AccessResult
	if isWrite {
		res = p.cache.Write(report.PhysicalAddress)
	} else {
		res = p.cache.Read(report.PhysicalAddress)
	}

	report.Cached = true
	report.Cache = &res
	report.TouchedBackingStore = res.TouchedBackingStore
	report.MemoryWrite = res.MemoryWrite

	return report, nil
}

func (p *Pipeline) translate(addr uint64, isWrite bool) (paging.Translation, error) {
	if isWrite {
		return p.translator.TranslateWrite(addr)
	}

	return p.translator.Translate(addr)
}
