package cache

import (
	"fmt"

	"github.com/sarchlab/memsim/mem/mem"
)

// Associativity tells how many ways each set of a cache level has.
type Associativity int

// The supported associativities.
const (
	DirectMapped Associativity = iota
	TwoWay
	FourWay
	FullyAssociative
)

func (a Associativity) String() string {
	switch a {
	case DirectMapped:
		return "direct"
	case TwoWay:
		return "2way"
	case FourWay:
		return "4way"
	case FullyAssociative:
		return "fully"
	default:
		return fmt.Sprintf("Associativity(%d)", int(a))
	}
}

// ParseAssociativity converts direct, 2way, 4way or fully into an
// Associativity.
func ParseAssociativity(s string) (Associativity, error) {
	switch s {
	case "direct":
		return DirectMapped, nil
	case "2way":
		return TwoWay, nil
	case "4way":
		return FourWay, nil
	case "fully":
		return FullyAssociative, nil
	}

	return 0, fmt.Errorf("unknown associativity %q", s)
}

// ReplacementPolicy selects the victim when a set is full.
type ReplacementPolicy int

// The supported replacement policies.
const (
	FIFO ReplacementPolicy = iota
	LRU
)

func (p ReplacementPolicy) String() string {
	if p == LRU {
		return "lru"
	}

	return "fifo"
}

// ParseReplacementPolicy converts fifo or lru into a ReplacementPolicy.
func ParseReplacementPolicy(s string) (ReplacementPolicy, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lru":
		return LRU, nil
	}

	return 0, fmt.Errorf("unknown replacement policy %q", s)
}

// WritePolicy tells when written data reaches the memory.
type WritePolicy int

// The supported write policies.
const (
	WriteThrough WritePolicy = iota
	WriteBack
)

func (p WritePolicy) String() string {
	if p == WriteBack {
		return "write-back"
	}

	return "write-through"
}

// ParseWritePolicy accepts wt, write-through, writethrough, wb, write-back
// and writeback.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch s {
	case "wt", "write-through", "writethrough":
		return WriteThrough, nil
	case "wb", "write-back", "writeback":
		return WriteBack, nil
	}

	return 0, fmt.Errorf("unknown write policy %q", s)
}

// LevelConfig is the immutable configuration of one cache level.
type LevelConfig struct {
	Lines         int               `json:"lines"`
	BlockSize     uint64            `json:"block_size"`
	Associativity Associativity     `json:"associativity"`
	Replacement   ReplacementPolicy `json:"replacement"`
	Write         WritePolicy       `json:"write"`
}

// Ways returns the number of lines in each set.
func (c LevelConfig) Ways() int {
	switch c.Associativity {
	case TwoWay:
		return 2
	case FourWay:
		return 4
	case FullyAssociative:
		return c.Lines
	default:
		return 1
	}
}

// Sets returns the number of sets.
func (c LevelConfig) Sets() int {
	ways := c.Ways()
	if ways == 0 {
		return 0
	}

	return c.Lines / ways
}

// Validate checks that the geometry can be built.
func (c LevelConfig) Validate() error {
	if c.Lines <= 0 {
		return mem.NewError(mem.InvalidConfig,
			"number of lines must be positive, got %d", c.Lines)
	}

	if c.BlockSize == 0 {
		return mem.NewError(mem.InvalidConfig, "block size must be positive")
	}

	if c.Lines%c.Ways() != 0 {
		return mem.NewError(mem.InvalidConfig,
			"%d lines cannot be divided into %s sets", c.Lines, c.Associativity)
	}

	return nil
}

// HierarchyConfig configures a cache hierarchy. L1 is mandatory. L3 can only
// be set together with L2.
type HierarchyConfig struct {
	L1 LevelConfig  `json:"l1"`
	L2 *LevelConfig `json:"l2,omitempty"`
	L3 *LevelConfig `json:"l3,omitempty"`
}

// Validate checks every configured level.
func (c HierarchyConfig) Validate() error {
	if c.L3 != nil && c.L2 == nil {
		return mem.NewError(mem.InvalidConfig, "L3 requires L2")
	}

	for i, l := range c.levels() {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("L%d: %w", i+1, err)
		}
	}

	return nil
}

func (c HierarchyConfig) levels() []LevelConfig {
	levels := []LevelConfig{c.L1}

	if c.L2 != nil {
		levels = append(levels, *c.L2)
	}

	if c.L3 != nil {
		levels = append(levels, *c.L3)
	}

	return levels
}

// Penalties are the cycles charged for probing each level and the memory.
type Penalties struct {
	L1     uint64
	L2     uint64
	L3     uint64
	Memory uint64
}

// DefaultPenalties returns L1=1, L2=10, L3=50 and Memory=100.
func DefaultPenalties() Penalties {
	return Penalties{L1: 1, L2: 10, L3: 50, Memory: 100}
}

func (p Penalties) level(i int) uint64 {
	switch i {
	case 0:
		return p.L1
	case 1:
		return p.L2
	default:
		return p.L3
	}
}

// MarshalText lets associativities appear by name in configuration files.
func (a Associativity) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the names accepted by ParseAssociativity.
func (a *Associativity) UnmarshalText(text []byte) error {
	v, err := ParseAssociativity(string(text))
	if err != nil {
		return err
	}

	*a = v

	return nil
}

// MarshalText lets replacement policies appear by name in configuration
// files.
func (p ReplacementPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the names accepted by ParseReplacementPolicy.
func (p *ReplacementPolicy) UnmarshalText(text []byte) error {
	v, err := ParseReplacementPolicy(string(text))
	if err != nil {
		return err
	}

	*p = v

	return nil
}

// MarshalText lets write policies appear by name in configuration files.
func (p WritePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the names accepted by ParseWritePolicy.
func (p *WritePolicy) UnmarshalText(text []byte) error {
	v, err := ParseWritePolicy(string(text))
	if err != nil {
		return err
	}

	*p = v

	return nil
}
