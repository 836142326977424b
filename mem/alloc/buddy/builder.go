package buddy

import (
	"fmt"

	"github.com/sarchlab/memsim/mem/mem"
)

const (
	defaultTotalMemory  = 1024
	defaultMinBlockSize = 16
)

// A Builder can build buddy allocators.
type Builder struct {
	totalMemory  uint64
	minBlockSize uint64
	strict       bool
}

// MakeBuilder creates a builder with the default configuration, which is
// 1024 bytes of memory and 16-byte minimum blocks.
func MakeBuilder() Builder {
	return Builder{
		totalMemory:  defaultTotalMemory,
		minBlockSize: defaultMinBlockSize,
	}
}

// WithTotalMemory sets the number of bytes managed by the allocator.
func (b Builder) WithTotalMemory(n uint64) Builder {
	b.totalMemory = n
	return b
}

// WithMinBlockSize sets the size of the smallest block that can be handed
// out.
func (b Builder) WithMinBlockSize(n uint64) Builder {
	b.minBlockSize = n
	return b
}

// WithStrictConfig makes Build fail on sizes that are not powers of two,
// instead of replacing them with the defaults.
func (b Builder) WithStrictConfig(strict bool) Builder {
	b.strict = strict
	return b
}

// Build creates the allocator. The returned warnings list every value that
// was replaced by a default.
func (b Builder) Build() (*Allocator, []mem.Warning, error) {
	var warnings []mem.Warning

	total, w, err := b.checkPowerOfTwo("total memory", b.totalMemory,
		defaultTotalMemory)
	if err != nil {
		return nil, nil, err
	}

	warnings = append(warnings, w...)

	minBlock, w, err := b.checkPowerOfTwo("min block size", b.minBlockSize,
		defaultMinBlockSize)
	if err != nil {
		return nil, nil, err
	}

	warnings = append(warnings, w...)

	if minBlock > total {
		return nil, nil, mem.NewError(mem.InvalidConfig,
			"min block size %d is larger than total memory %d",
			minBlock, total)
	}

	maxOrder := 0
	for n := total / minBlock; n > 1; n >>= 1 {
		maxOrder++
	}

	a := &Allocator{
		totalMemory:  total,
		minBlockSize: minBlock,
		maxOrder:     maxOrder,
	}
	a.Reset()

	return a, warnings, nil
}

func (b Builder) checkPowerOfTwo(
	what string,
	value, fallback uint64,
) (uint64, []mem.Warning, error) {
	if mem.IsPowerOfTwo(value) {
		return value, nil, nil
	}

	if b.strict {
		return 0, nil, mem.NewError(mem.NonPowerOfTwoConfig,
			"%s %d is not a power of two", what, value)
	}

	w := mem.Warning{
		Kind: mem.NonPowerOfTwoConfig,
		Msg: fmt.Sprintf("%s %d is not a power of two, using %d",
			what, value, fallback),
	}

	return fallback, []mem.Warning{w}, nil
}
