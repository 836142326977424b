// Package cache simulates set-associative caches and multi-level cache
// hierarchies. Only tags are tracked, no data is stored.
package cache

import (
	"github.com/sarchlab/memsim/mem/cache/internal/tagging"
	"github.com/sarchlab/memsim/sim/hooking"
)

// Line is the bookkeeping of one cache way.
type Line = tagging.Line

// An Eviction is the item of the hooks invoked at HookPosCacheEviction.
type Eviction struct {
	Level     string
	Address   uint64
	Dirty     bool
	WroteBack bool
}

// LevelStats are the counters of one cache level.
type LevelStats struct {
	Name        string
	Hits        uint64
	Misses      uint64
	Writes      uint64
	WriteHits   uint64
	WriteMisses uint64
	Writebacks  uint64
	HitRatio    float64
}

// Cache is one set-associative cache level.
type Cache struct {
	hooking.HookableBase

	name         string
	config       LevelConfig
	tags         *tagging.TagArray
	victimFinder tagging.VictimFinder

	accessCounter uint64
	nextInsertion uint64

	hits        uint64
	misses      uint64
	writes      uint64
	writeHits   uint64
	writeMisses uint64
	writebacks  uint64
}

// Name returns the name of the level, such as L1.
func (c *Cache) Name() string {
	return c.name
}

// Capacity returns the number of bytes the level can hold.
func (c *Cache) Capacity() uint64 {
	return c.tags.TotalSize()
}

// Config returns the configuration the level was built with.
func (c *Cache) Config() LevelConfig {
	return c.config
}

// Lines returns a copy of the lines, indexed by set and way.
func (c *Cache) Lines() [][]Line {
	return c.tags.Snapshot()
}

// BlockAddress returns the address of the first byte held by the line.
func (c *Cache) BlockAddress(line Line) uint64 {
	return c.tags.BlockAddress(line)
}

// Read probes the cache and reports whether addr hits. Misses do not
// allocate.
func (c *Cache) Read(addr uint64) bool {
	c.accessCounter++

	line, hit := c.tags.Lookup(addr)
	if !hit {
		c.misses++
		return false
	}

	c.hits++
	c.touch(line, c.accessCounter)

	return true
}

// Write probes the cache with a write and reports whether addr hits. A miss
// allocates a line for addr.
func (c *Cache) Write(addr uint64) bool {
	c.accessCounter++
	c.writes++

	line, hit := c.tags.Lookup(addr)
	if hit {
		c.writeHits++
		c.hits++
		c.touch(line, c.accessCounter)

		if c.config.Write == WriteBack {
			line.Dirty = true
		}

		return true
	}

	c.writeMisses++
	c.misses++

	c.allocate(addr, c.config.Write == WriteBack, c.accessCounter)

	return false
}

// Insert places addr in the cache without counting a hit or a miss. It is
// used to fill a level from a farther one. The dirty flag is ignored by
// write-through levels.
func (c *Cache) Insert(addr uint64, dirty bool) {
	dirty = dirty && c.config.Write == WriteBack

	line, hit := c.tags.Lookup(addr)
	if hit {
		if c.config.Replacement == LRU {
			c.accessCounter++
			line.LastAccess = c.accessCounter
		}

		if dirty {
			line.Dirty = true
		}

		return
	}

	c.accessCounter++
	c.allocate(addr, dirty, c.accessCounter)
}

// Evict invalidates the line that holds addr. It returns whether the line
// was dirty and whether it was found at all.
func (c *Cache) Evict(addr uint64) (wasDirty, found bool) {
	line, hit := c.tags.Lookup(addr)
	if !hit {
		return false, false
	}

	wasDirty = line.Dirty
	wroteBack := c.countWriteback(*line)

	c.invokeEvictionHook(*line, wroteBack)

	line.Valid = false
	line.Dirty = false

	return wasDirty, true
}

func (c *Cache) touch(line *tagging.Line, now uint64) {
	if c.config.Replacement == LRU {
		line.LastAccess = now
	}
}

func (c *Cache) allocate(addr uint64, dirty bool, now uint64) {
	set, _ := c.tags.GetSet(addr)
	victim := c.victimFinder.FindVictim(set)

	if victim.Valid {
		wroteBack := c.countWriteback(*victim)
		c.invokeEvictionHook(*victim, wroteBack)
	}

	victim.Valid = true
	victim.Tag = c.tags.Tag(addr)
	victim.Dirty = dirty
	victim.InsertionOrder = c.nextInsertion
	victim.LastAccess = now
	c.nextInsertion++
}

func (c *Cache) countWriteback(line tagging.Line) bool {
	if line.Dirty && c.config.Write == WriteBack {
		c.writebacks++
		return true
	}

	return false
}

func (c *Cache) invokeEvictionHook(line tagging.Line, wroteBack bool) {
	if c.NumHooks() == 0 {
		return
	}

	ctx := hooking.HookCtx{
		Domain: c,
		Pos:    hooking.HookPosCacheEviction,
		Item: Eviction{
			Level:     c.name,
			Address:   c.tags.BlockAddress(line),
			Dirty:     line.Dirty,
			WroteBack: wroteBack,
		},
	}

	c.InvokeHook(ctx)
}

// Stats returns the counters of the level.
func (c *Cache) Stats() LevelStats {
	s := LevelStats{
		Name:        c.name,
		Hits:        c.hits,
		Misses:      c.misses,
		Writes:      c.writes,
		WriteHits:   c.writeHits,
		WriteMisses: c.writeMisses,
		Writebacks:  c.writebacks,
	}

	if total := c.hits + c.misses; total > 0 {
		s.HitRatio = float64(c.hits) / float64(total) * 100
	}

	return s
}

// Reset invalidates every line and clears all the counters.
func (c *Cache) Reset() {
	c.tags.Reset()

	c.accessCounter = 0
	c.nextInsertion = 0
	c.hits = 0
	c.misses = 0
	c.writes = 0
	c.writeHits = 0
	c.writeMisses = 0
	c.writebacks = 0
}
