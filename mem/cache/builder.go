package cache

import (
	"fmt"

	"github.com/sarchlab/memsim/mem/cache/internal/tagging"
)

// Builder can build cache levels.
type Builder struct {
	name   string
	config LevelConfig
}

// MakeBuilder creates a new builder. The default level is a 64-line,
// 4-way, LRU, write-through cache with 64-byte blocks.
func MakeBuilder() Builder {
	return Builder{
		name: "L1",
		config: LevelConfig{
			Lines:         64,
			BlockSize:     64,
			Associativity: FourWay,
			Replacement:   LRU,
			Write:         WriteThrough,
		},
	}
}

// WithName sets the name of the level.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithConfig sets the geometry and the policies of the level.
func (b Builder) WithConfig(config LevelConfig) Builder {
	b.config = config
	return b
}

// Build creates the cache level.
func (b Builder) Build() (*Cache, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		name:   b.name,
		config: b.config,
		tags: tagging.NewTagArray(
			b.config.Sets(), b.config.Ways(), b.config.BlockSize),
	}

	switch b.config.Replacement {
	case FIFO:
		c.victimFinder = tagging.NewFIFOVictimFinder()
	case LRU:
		c.victimFinder = tagging.NewLRUVictimFinder()
	default:
		return nil, fmt.Errorf("unsupported replacement policy %s",
			b.config.Replacement)
	}

	return c, nil
}

// HierarchyBuilder can build cache hierarchies.
type HierarchyBuilder struct {
	config    HierarchyConfig
	penalties Penalties
}

// MakeHierarchyBuilder creates a new builder with a default L1 only and the
// default penalties.
func MakeHierarchyBuilder() HierarchyBuilder {
	return HierarchyBuilder{
		config:    HierarchyConfig{L1: MakeBuilder().config},
		penalties: DefaultPenalties(),
	}
}

// WithConfig sets the configuration of every level.
func (b HierarchyBuilder) WithConfig(config HierarchyConfig) HierarchyBuilder {
	b.config = config
	return b
}

// WithPenalties overrides the cycles charged per level.
func (b HierarchyBuilder) WithPenalties(p Penalties) HierarchyBuilder {
	b.penalties = p
	return b
}

// Build creates the hierarchy.
func (b HierarchyBuilder) Build() (*Hierarchy, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	h := &Hierarchy{
		config:    b.config,
		penalties: b.penalties,
	}

	for i, lc := range b.config.levels() {
		c, err := MakeBuilder().
			WithName(fmt.Sprintf("L%d", i+1)).
			WithConfig(lc).
			Build()
		if err != nil {
			return nil, err
		}

		h.levels = append(h.levels, c)
	}

	h.levelHits = make([]uint64, len(h.levels))

	return h, nil
}
