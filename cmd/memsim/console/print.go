package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/pipeline"
)

const helpText = `Commands:
  init memory <size> [buddy]            create the physical allocator
  init vm <vm_size> <page_size> [policy] enable paging (fifo|lru)
  init cache <15 args>                  enable the caches, 5 args per level:
                                        lines block assoc policy write
                                        (lines=0 skips a level)
  init cache                            use the --cache-config file
  set strategy <first_fit|best_fit|worst_fit>
  set vm_policy <fifo|lru>
  malloc <size>                         allocate a block
  free <block_id>                       free a block
  read <address> | access <address>     read through the pipeline
  write <address>                       write through the pipeline
  dump                                  show the memory layout
  page_table                            show the page table
  cache_contents                        show the valid cache lines
  stats | status                        show statistics or configuration
  verbose on|off                        detailed access output
  reset                                 reset every component
  clear                                 tear every component down
  exit | quit
`

func (c *Console) printHelp() {
	fmt.Fprint(c.out, helpText)
}

func (c *Console) printStatus() {
	st := c.sys.Stats()

	if st.Allocator == nil {
		fmt.Fprintln(c.out, "Memory: not initialized")
	} else {
		fmt.Fprintf(c.out, "Memory: %d bytes, %s mode\n",
			st.Allocator.TotalMemory, st.Mode)

		if a := c.sys.ExactFit(); a != nil {
			fmt.Fprintf(c.out, "Strategy: %s\n", a.FitPolicy())
		}
	}

	if vm := c.sys.VM(); vm == nil {
		fmt.Fprintln(c.out, "Virtual memory: disabled")
	} else {
		fmt.Fprintf(c.out,
			"Virtual memory: %d bytes, page size %d, %s\n",
			vm.VirtualMemorySize(), vm.PageSize(), vm.Policy())
	}

	if h := c.sys.Caches(); h == nil {
		fmt.Fprintln(c.out, "Cache: disabled")
	} else {
		for _, l := range h.Levels() {
			cfg := l.Config()
			fmt.Fprintf(c.out, "%s: %d lines x %d bytes (%d bytes), %s, %s, %s\n",
				l.Name(), cfg.Lines, cfg.BlockSize, l.Capacity(),
				cfg.Associativity, cfg.Replacement, cfg.Write)
		}
	}
}

func (c *Console) printStats() {
	st := c.sys.Stats()

	if st.Allocator != nil {
		c.printAllocatorStats(*st.Allocator)
	}

	if v := st.VM; v != nil {
		fmt.Fprintln(c.out, "--- Virtual memory ---")
		fmt.Fprintf(c.out, "Accesses: %d  Hits: %d  Faults: %d\n",
			v.TotalAccesses, v.Hits, v.Faults)
		fmt.Fprintf(c.out, "Hit rate: %.2f%%  Fault rate: %.2f%%\n",
			v.HitRate, v.FaultRate)
		fmt.Fprintf(c.out, "Disk reads: %d  Disk writes: %d  Frames used: %d/%d\n",
			v.DiskReads, v.DiskWrites, v.FramesUsed, v.NumFrames)
	}

	if h := st.Cache; h != nil {
		fmt.Fprintln(c.out, "--- Cache ---")
		for _, l := range h.Levels {
			fmt.Fprintf(c.out,
				"%s: hits %d  misses %d  hit ratio %.2f%%  writebacks %d\n",
				l.Name, l.Hits, l.Misses, l.HitRatio, l.Writebacks)
		}

		fmt.Fprintf(c.out, "Accesses: %d  Memory accesses: %d  Memory writes: %d\n",
			h.TotalAccesses, h.MemoryAccesses, h.MemoryWrites)
		fmt.Fprintf(c.out, "Penalty cycles: %d  Avg cycles/access: %.2f\n",
			h.PenaltyCycles, h.AvgCyclesPerAccess)
	}

	if st.Allocator == nil && st.VM == nil && st.Cache == nil {
		fmt.Fprintln(c.out, "Nothing initialized")
	}

	c.printEventCounts()
}

func (c *Console) printEventCounts() {
	names := c.events.PosNames()
	if len(names) == 0 {
		return
	}

	counts := make([]string, 0, len(names))
	for _, n := range names {
		counts = append(counts, fmt.Sprintf("%s: %d", n, c.events.Count(n)))
	}

	fmt.Fprintln(c.out, "--- Events ---")
	fmt.Fprintln(c.out, strings.Join(counts, "  "))
}

func (c *Console) printAllocatorStats(a alloc.Stats) {
	fmt.Fprintf(c.out, "--- Allocator (%s) ---\n", a.Kind)
	fmt.Fprintf(c.out, "Total: %d  Used: %d  Free: %d\n",
		a.TotalMemory, a.Used, a.Free)

	if a.Kind == alloc.Buddy {
		fmt.Fprintf(c.out, "Internal fragmentation: %.0f bytes\n",
			a.Fragmentation)
		fmt.Fprintf(c.out, "Splits: %d  Merges: %d\n", a.Splits, a.Merges)
	} else {
		fmt.Fprintf(c.out, "External fragmentation: %.2f%%\n", a.Fragmentation)
	}

	fmt.Fprintf(c.out, "Attempts: %d  Successes: %d  Failures: %d  "+
		"Success rate: %.2f%%\n",
		a.Attempts, a.Successes, a.Failures, a.SuccessRate())
	fmt.Fprintf(c.out, "Deallocations: %d  Failed: %d  Live blocks: %d\n",
		a.Deallocations, a.FailedDeallocations, a.LiveAllocations)
}

func hitName(r *cache.AccessResult) string {
	if r.HitLevel == 0 {
		return "memory"
	}

	return fmt.Sprintf("L%d hit", r.HitLevel)
}

func (c *Console) printAccess(r pipeline.AccessReport) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s 0x%x", r.Kind, r.VirtualAddress)

	if r.Translated {
		fmt.Fprintf(&b, " -> 0x%x", r.PhysicalAddress)
		if r.Translation.Fault {
			b.WriteString(" (page fault)")
		}
	}

	if r.Cached {
		fmt.Fprintf(&b, " [%s, %d cycles]", hitName(r.Cache), r.Cache.PenaltyCycles)
	}

	fmt.Fprintln(c.out, b.String())

	if !c.verbose {
		return
	}

	if r.Translated {
		t := r.Translation
		fmt.Fprintf(c.out, "  page %d offset %d frame %d\n",
			t.Page, t.Offset, t.Frame)

		if t.Evicted != nil {
			fmt.Fprintf(c.out, "  evicted page %d from frame %d, dirty %t\n",
				t.Evicted.Page, t.Evicted.Frame, t.Evicted.Dirty)
		}
	}

	if r.Cached {
		for _, l := range r.Cache.Levels {
			outcome := "MISS"
			if l.Hit {
				outcome = "HIT"
			}

			fmt.Fprintf(c.out, "  %s %s\n", l.Name, outcome)
		}

		if r.Cache.Writebacks > 0 {
			fmt.Fprintf(c.out, "  writebacks: %d\n", r.Cache.Writebacks)
		}
	}

	if r.MemoryWrite {
		fmt.Fprintln(c.out, "  memory written")
	}
}

func (c *Console) dump() {
	if a := c.sys.ExactFit(); a != nil {
		fmt.Fprintln(c.out, "Start    End      Size     State")

		for _, b := range a.Blocks() {
			state := "FREE"
			if b.Allocated {
				state = fmt.Sprintf("USED (id=%d)", b.ID)
			}

			fmt.Fprintf(c.out, "0x%06x 0x%06x %-8d %s\n",
				b.Start, b.End()-1, b.Size, state)
		}

		return
	}

	if a := c.sys.Buddy(); a != nil {
		for order, list := range a.FreeLists() {
			if len(list) == 0 {
				continue
			}

			addrs := make([]string, len(list))
			for i, addr := range list {
				addrs[i] = fmt.Sprintf("0x%x", addr)
			}

			fmt.Fprintf(c.out, "Order %d (%d bytes): %s\n",
				order, a.BlockSize(order), strings.Join(addrs, " "))
		}

		records := a.Records()
		ids := make([]alloc.BlockID, 0, len(records))
		for id := range records {
			ids = append(ids, id)
		}

		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			r := records[id]
			fmt.Fprintf(c.out,
				"Block %d: 0x%x requested %d actual %d\n",
				id, r.Address, r.RequestedSize, r.ActualSize)
		}

		return
	}

	fmt.Fprintln(c.out, "Memory not initialized")
}

func (c *Console) printPageTable() {
	vm := c.sys.VM()
	if vm == nil {
		fmt.Fprintln(c.out, "Virtual memory not enabled")
		return
	}

	fmt.Fprintln(c.out, "Page  Frame  Dirty  Loaded  LastAccess  Count")

	for page, e := range vm.PageTable() {
		if !e.Valid {
			continue
		}

		fmt.Fprintf(c.out, "%-5d %-6d %-6t %-7d %-11d %d\n",
			page, e.Frame, e.Dirty, e.LoadTime, e.LastAccess, e.AccessCount)
	}
}

func (c *Console) printCacheContents() {
	h := c.sys.Caches()
	if h == nil {
		fmt.Fprintln(c.out, "Cache not enabled")
		return
	}

	for _, l := range h.Levels() {
		fmt.Fprintf(c.out, "%s:\n", l.Name())

		for set, lines := range l.Lines() {
			for way, line := range lines {
				if !line.Valid {
					continue
				}

				fmt.Fprintf(c.out, "  set %d way %d: block 0x%x dirty %t\n",
					set, way, l.BlockAddress(line), line.Dirty)
			}
		}
	}
}
