package exactfit

import (
	"fmt"
)

// FitPolicy decides which free block serves an allocation request.
type FitPolicy int

// The supported fit policies.
const (
	FirstFit FitPolicy = iota
	BestFit
	WorstFit
)

func (p FitPolicy) String() string {
	switch p {
	case FirstFit:
		return "first_fit"
	case BestFit:
		return "best_fit"
	case WorstFit:
		return "worst_fit"
	default:
		return fmt.Sprintf("FitPolicy(%d)", int(p))
	}
}

// ParseFitPolicy converts a policy name into a FitPolicy.
func ParseFitPolicy(s string) (FitPolicy, error) {
	switch s {
	case "first_fit", "first", "firstfit":
		return FirstFit, nil
	case "best_fit", "best", "bestfit":
		return BestFit, nil
	case "worst_fit", "worst", "worstfit":
		return WorstFit, nil
	default:
		return 0, fmt.Errorf("unknown fit policy %q", s)
	}
}

// findBlock returns the index of the block that should serve a request of
// the given size, or -1 if no free block is large enough.
func (p FitPolicy) findBlock(blocks []Block, size uint64) int {
	chosen := -1

	for i, b := range blocks {
		if b.Allocated || b.Size < size {
			continue
		}

		switch p {
		case FirstFit:
			return i
		case BestFit:
			if chosen < 0 || b.Size-size < blocks[chosen].Size-size {
				chosen = i
			}
		case WorstFit:
			if chosen < 0 || b.Size > blocks[chosen].Size {
				chosen = i
			}
		default:
			panic(fmt.Sprintf("unknown fit policy %d", int(p)))
		}
	}

	return chosen
}
