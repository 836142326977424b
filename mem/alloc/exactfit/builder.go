package exactfit

import (
	"github.com/sarchlab/memsim/mem/mem"
)

// A Builder can build exact-fit allocators.
type Builder struct {
	totalMemory uint64
	policy      FitPolicy
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		totalMemory: 1024,
		policy:      FirstFit,
	}
}

// WithTotalMemory sets the number of bytes managed by the allocator.
func (b Builder) WithTotalMemory(n uint64) Builder {
	b.totalMemory = n
	return b
}

// WithFitPolicy sets the initial fit policy.
func (b Builder) WithFitPolicy(p FitPolicy) Builder {
	b.policy = p
	return b
}

// Build creates the allocator.
func (b Builder) Build() (*Allocator, error) {
	if b.totalMemory == 0 {
		return nil, mem.NewError(mem.InvalidConfig,
			"total memory must be positive")
	}

	a := &Allocator{
		totalMemory: b.totalMemory,
		policy:      b.policy,
	}
	a.Reset()

	return a, nil
}
