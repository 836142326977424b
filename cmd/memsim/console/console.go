// Package console interprets the text commands that drive a memory system.
package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/alloc/exactfit"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/system"
	"github.com/sarchlab/memsim/mem/vm/paging"
	"github.com/sarchlab/memsim/sim/hooking"
)

// ErrUsage is returned when a command is malformed.
var ErrUsage = errors.New("usage")

// A Publisher receives snapshots of the system after every command.
type Publisher interface {
	PublishStats(stats any)
	PublishComponent(name string, snapshot any)
	RemoveComponent(name string)
}

// Console runs commands against a memory system and prints the results.
type Console struct {
	sys         *system.System
	out         io.Writer
	verbose     bool
	publisher   Publisher
	cacheConfig *cache.HierarchyConfig
	published   []string
	events      *hooking.EventCounter
}

// New creates a console that prints to out. The console counts the events of
// the system, which the stats command reports.
func New(sys *system.System, out io.Writer) *Console {
	c := &Console{
		sys:    sys,
		out:    out,
		events: hooking.NewEventCounter(),
	}

	sys.AcceptHook(c.events)
	sys.AcceptComponentHook(c.events)

	return c
}

// WithPublisher sets where the snapshots go.
func (c *Console) WithPublisher(p Publisher) *Console {
	c.publisher = p
	return c
}

// WithCacheConfig sets the hierarchy built by an "init cache" command that
// has no arguments.
func (c *Console) WithCacheConfig(config cache.HierarchyConfig) *Console {
	c.cacheConfig = &config
	return c
}

// Execute runs one command line. It returns true when the command asks to
// quit.
func (c *Console) Execute(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}

	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help":
		c.printHelp()
	case "status":
		c.printStatus()
	case "stats":
		c.printStats()
	case "verbose":
		err = c.setVerbose(args)
	case "clear":
		c.sys.Clear()
		c.events.Reset()
		fmt.Fprintln(c.out, "All components cleared")
	case "reset":
		c.sys.Reset()
		c.events.Reset()
		fmt.Fprintln(c.out, "All components reset")
	case "init":
		err = c.init(args)
	case "set":
		err = c.set(args)
	case "malloc":
		err = c.malloc(args)
	case "free":
		err = c.free(args)
	case "read", "access":
		err = c.access(cmd, args, false)
	case "write":
		err = c.access(cmd, args, true)
	case "dump":
		c.dump()
	case "page_table":
		c.printPageTable()
	case "cache_contents":
		c.printCacheContents()
	default:
		err = fmt.Errorf("unknown command %q, type 'help' for available commands", cmd)
	}

	c.publish()

	return false, err
}

func usage(format string) error {
	return fmt.Errorf("%w: %s", ErrUsage, format)
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}

	return v, nil
}

func (c *Console) printWarnings(warnings []mem.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(c.out, "Warning: %s\n", w)
	}
}

func (c *Console) setVerbose(args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return usage("verbose on|off")
	}

	c.verbose = args[0] == "on"
	fmt.Fprintf(c.out, "Verbose mode %s\n", args[0])

	return nil
}

func (c *Console) init(args []string) error {
	if len(args) == 0 {
		return usage("init memory|vm|cache ...")
	}

	switch args[0] {
	case "memory":
		return c.initMemory(args[1:])
	case "vm":
		return c.initVM(args[1:])
	case "cache":
		return c.initCache(args[1:])
	}

	return usage("init memory|vm|cache ...")
}

func (c *Console) initMemory(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("init memory <size> [buddy]")
	}

	size, err := parseUint(args[0])
	if err != nil {
		return err
	}

	mode := system.Classic
	if len(args) == 2 {
		mode, err = system.ParseMode(args[1])
		if err != nil {
			return err
		}
	}

	warnings, err := c.sys.InitMemory(size, mode)
	c.printWarnings(warnings)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Memory initialized: %d bytes, %s mode\n",
		c.sys.Stats().Allocator.TotalMemory, mode)

	return nil
}

func (c *Console) initVM(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("init vm <vm_size> <page_size> [fifo|lru]")
	}

	vmSize, err := parseUint(args[0])
	if err != nil {
		return err
	}

	pageSize, err := parseUint(args[1])
	if err != nil {
		return err
	}

	policy := paging.FIFO
	if len(args) == 3 {
		policy, err = paging.ParsePolicy(args[2])
		if err != nil {
			return err
		}
	}

	warnings, err := c.sys.InitVirtualMemory(vmSize, pageSize, policy)
	c.printWarnings(warnings)
	if err != nil {
		return err
	}

	st := c.sys.Stats().VM
	fmt.Fprintf(c.out,
		"Virtual memory initialized: %d pages, %d frames, %s\n",
		st.NumPages, st.NumFrames, policy)

	return nil
}

func (c *Console) initCache(args []string) error {
	var config cache.HierarchyConfig

	switch {
	case len(args) == 0 && c.cacheConfig != nil:
		config = *c.cacheConfig
	case len(args) == 15:
		var err error

		config, err = parseHierarchy(args)
		if err != nil {
			return err
		}
	default:
		return usage("init cache <l1_lines> <l1_block> <l1_assoc> <l1_pol> " +
			"<l1_write> <l2 ...> <l3 ...> (lines=0 skips a level)")
	}

	if err := c.sys.InitCache(config); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Cache initialized: %d levels\n",
		len(c.sys.Caches().Levels()))

	return nil
}

func parseHierarchy(args []string) (cache.HierarchyConfig, error) {
	var config cache.HierarchyConfig

	levels := make([]*cache.LevelConfig, 3)
	for i := range levels {
		l, err := parseLevel(args[i*5 : i*5+5])
		if err != nil {
			return config, fmt.Errorf("L%d: %w", i+1, err)
		}

		levels[i] = l
	}

	if levels[0] == nil {
		return config, mem.NewError(mem.InvalidConfig, "L1 must have lines")
	}

	config.L1 = *levels[0]
	config.L2 = levels[1]
	config.L3 = levels[2]

	return config, nil
}

// parseLevel returns nil for a level with no lines.
func parseLevel(args []string) (*cache.LevelConfig, error) {
	lines, err := strconv.Atoi(args[0])
	if err != nil || lines < 0 {
		return nil, fmt.Errorf("invalid line count %q", args[0])
	}

	if lines == 0 {
		return nil, nil
	}

	blockSize, err := parseUint(args[1])
	if err != nil {
		return nil, err
	}

	assoc, err := cache.ParseAssociativity(args[2])
	if err != nil {
		return nil, err
	}

	repl, err := cache.ParseReplacementPolicy(args[3])
	if err != nil {
		return nil, err
	}

	write, err := cache.ParseWritePolicy(args[4])
	if err != nil {
		return nil, err
	}

	return &cache.LevelConfig{
		Lines:         lines,
		BlockSize:     blockSize,
		Associativity: assoc,
		Replacement:   repl,
		Write:         write,
	}, nil
}

func (c *Console) set(args []string) error {
	if len(args) != 2 {
		return usage("set strategy|vm_policy <value>")
	}

	switch args[0] {
	case "strategy":
		p, err := exactfit.ParseFitPolicy(args[1])
		if err != nil {
			return err
		}

		if err := c.sys.SetFitPolicy(p); err != nil {
			return err
		}

		fmt.Fprintf(c.out, "Allocation strategy set to %s\n", p)
	case "vm_policy":
		p, err := paging.ParsePolicy(args[1])
		if err != nil {
			return err
		}

		if err := c.sys.SetPagePolicy(p); err != nil {
			return err
		}

		fmt.Fprintf(c.out, "Page replacement policy set to %s\n", p)
	default:
		return usage("set strategy|vm_policy <value>")
	}

	return nil
}

func (c *Console) malloc(args []string) error {
	if len(args) != 1 {
		return usage("malloc <size>")
	}

	size, err := parseUint(args[0])
	if err != nil {
		return err
	}

	id, err := c.sys.Allocate(size)
	if err != nil {
		return err
	}

	addr, _ := c.blockAddress(id)
	fmt.Fprintf(c.out, "Allocated block id=%d at address=0x%04x\n", id, addr)

	return nil
}

func (c *Console) blockAddress(id alloc.BlockID) (uint64, bool) {
	if a := c.sys.ExactFit(); a != nil {
		for _, b := range a.Blocks() {
			if b.Allocated && b.ID == id {
				return b.Start, true
			}
		}
	}

	if a := c.sys.Buddy(); a != nil {
		r, ok := a.Records()[id]
		return r.Address, ok
	}

	return 0, false
}

func (c *Console) free(args []string) error {
	if len(args) != 1 {
		return usage("free <block_id>")
	}

	id, err := parseUint(args[0])
	if err != nil {
		return err
	}

	if err := c.sys.Deallocate(alloc.BlockID(id)); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Block %d freed\n", id)

	return nil
}

func (c *Console) access(cmd string, args []string, isWrite bool) error {
	if len(args) != 1 {
		return usage(cmd + " <address>")
	}

	addr, err := parseUint(args[0])
	if err != nil {
		return err
	}

	report, err := c.sys.Access(addr, isWrite)
	if err != nil {
		return err
	}

	c.printAccess(report)

	return nil
}
