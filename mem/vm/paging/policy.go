package paging

import "fmt"

// Policy selects which page is evicted when every frame is occupied.
type Policy int

// The supported page replacement policies.
const (
	FIFO Policy = iota
	LRU
)

func (p Policy) String() string {
	if p == LRU {
		return "lru"
	}

	return "fifo"
}

// ParsePolicy converts fifo or lru into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lru":
		return LRU, nil
	}

	return 0, fmt.Errorf("unknown page replacement policy %q", s)
}
