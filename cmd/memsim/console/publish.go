package console

import (
	"sort"

	"github.com/sarchlab/memsim/mem/alloc/buddy"
	"github.com/sarchlab/memsim/mem/alloc/exactfit"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/vm/paging"
)

// ExactFitSnapshot is the published state of an exact-fit allocator.
type ExactFitSnapshot struct {
	Policy string
	Blocks []exactfit.Block
}

// BuddySnapshot is the published state of a buddy allocator.
type BuddySnapshot struct {
	MinBlockSize uint64
	FreeLists    [][]uint64
	Records      []buddy.AllocationRecord
}

// VMSnapshot is the published state of a paging system.
type VMSnapshot struct {
	Policy    string
	PageTable []paging.PageTableEntry
	Frames    []paging.Frame
}

// CacheSnapshot is the published state of a cache level.
type CacheSnapshot struct {
	Config cache.LevelConfig
	Sets   [][]cache.Line
}

func (c *Console) publish() {
	if c.publisher == nil {
		return
	}

	c.publisher.PublishStats(c.sys.Stats())

	snapshots := c.snapshots()

	for _, name := range c.published {
		if _, ok := snapshots[name]; !ok {
			c.publisher.RemoveComponent(name)
		}
	}

	c.published = c.published[:0]

	for _, name := range []string{"allocator", "vm", "L1", "L2", "L3"} {
		s, ok := snapshots[name]
		if !ok {
			continue
		}

		c.publisher.PublishComponent(name, s)
		c.published = append(c.published, name)
	}
}

func (c *Console) snapshots() map[string]any {
	snapshots := make(map[string]any)

	if a := c.sys.ExactFit(); a != nil {
		snapshots["allocator"] = &ExactFitSnapshot{
			Policy: a.FitPolicy().String(),
			Blocks: a.Blocks(),
		}
	}

	if a := c.sys.Buddy(); a != nil {
		s := &BuddySnapshot{
			MinBlockSize: a.MinBlockSize(),
			FreeLists:    a.FreeLists(),
		}

		for _, r := range a.Records() {
			s.Records = append(s.Records, r)
		}

		sort.Slice(s.Records, func(i, j int) bool {
			return s.Records[i].Address < s.Records[j].Address
		})

		snapshots["allocator"] = s
	}

	if vm := c.sys.VM(); vm != nil {
		snapshots["vm"] = &VMSnapshot{
			Policy:    vm.Policy().String(),
			PageTable: vm.PageTable(),
			Frames:    vm.Frames(),
		}
	}

	if h := c.sys.Caches(); h != nil {
		for _, l := range h.Levels() {
			snapshots[l.Name()] = &CacheSnapshot{
				Config: l.Config(),
				Sets:   l.Lines(),
			}
		}
	}

	return snapshots
}
