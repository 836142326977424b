package paging

import (
	"fmt"

	"github.com/sarchlab/memsim/mem/mem"
)

// A Builder can build paging systems.
type Builder struct {
	vmSize   uint64
	pmSize   uint64
	pageSize uint64
	policy   Policy
}

// MakeBuilder creates a builder with 4 KB of virtual memory, 1 KB of
// physical memory, 256-byte pages and FIFO replacement.
func MakeBuilder() Builder {
	return Builder{
		vmSize:   4096,
		pmSize:   1024,
		pageSize: 256,
		policy:   FIFO,
	}
}

// WithVirtualMemorySize sets the number of addressable virtual bytes.
func (b Builder) WithVirtualMemorySize(n uint64) Builder {
	b.vmSize = n
	return b
}

// WithPhysicalMemorySize sets the number of physical bytes that back the
// frames.
func (b Builder) WithPhysicalMemorySize(n uint64) Builder {
	b.pmSize = n
	return b
}

// WithPageSize sets the size of pages and frames.
func (b Builder) WithPageSize(n uint64) Builder {
	b.pageSize = n
	return b
}

// WithPolicy sets the page replacement policy.
func (b Builder) WithPolicy(p Policy) Builder {
	b.policy = p
	return b
}

// Build creates the paging system. A virtual memory that is not a multiple
// of the page size ends with a partial page, which is mapped like any other.
// If the physical memory has more frames than there are virtual pages, the
// frames are capped and a warning is returned.
func (b Builder) Build() (*PagingSystem, []mem.Warning, error) {
	if b.vmSize == 0 || b.pmSize == 0 || b.pageSize == 0 {
		return nil, nil, mem.NewError(mem.InvalidConfig,
			"sizes must be positive, got vm=%d pm=%d page=%d",
			b.vmSize, b.pmSize, b.pageSize)
	}

	if b.pageSize > b.vmSize {
		return nil, nil, mem.NewError(mem.InvalidConfig,
			"page size %d is larger than virtual memory %d",
			b.pageSize, b.vmSize)
	}

	numPages := b.vmSize / b.pageSize
	if b.vmSize%b.pageSize != 0 {
		numPages++
	}

	numFrames := b.pmSize / b.pageSize

	if numFrames == 0 {
		return nil, nil, mem.NewError(mem.InvalidConfig,
			"physical memory %d cannot hold a single %d-byte page",
			b.pmSize, b.pageSize)
	}

	var warnings []mem.Warning

	if numFrames > numPages {
		warnings = append(warnings, mem.Warning{
			Kind: mem.InvalidConfig,
			Msg: fmt.Sprintf(
				"%d physical frames exceed %d virtual pages, using %d frames",
				numFrames, numPages, numPages),
		})
		numFrames = numPages
	}

	p := &PagingSystem{
		vmSize:    b.vmSize,
		pageSize:  b.pageSize,
		numPages:  int(numPages),
		numFrames: int(numFrames),
		policy:    b.policy,
	}
	p.Reset()

	return p, warnings, nil
}
