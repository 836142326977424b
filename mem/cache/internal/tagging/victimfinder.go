package tagging

// A VictimFinder decides which line of a set should be replaced.
type VictimFinder interface {
	FindVictim(set *Set) *Line
}

func firstInvalid(set *Set) *Line {
	for i := range set.Lines {
		if !set.Lines[i].Valid {
			return &set.Lines[i]
		}
	}

	return nil
}

// FIFOVictimFinder evicts the line that was inserted first.
type FIFOVictimFinder struct{}

// NewFIFOVictimFinder returns a newly constructed FIFO victim finder.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the first invalid line, or the line with the smallest
// insertion order. Ties go to the lowest way.
func (e *FIFOVictimFinder) FindVictim(set *Set) *Line {
	if line := firstInvalid(set); line != nil {
		return line
	}

	victim := &set.Lines[0]
	for i := 1; i < len(set.Lines); i++ {
		if set.Lines[i].InsertionOrder < victim.InsertionOrder {
			victim = &set.Lines[i]
		}
	}

	return victim
}

// LRUVictimFinder evicts the least recently used line.
type LRUVictimFinder struct{}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the first invalid line, or the line with the smallest
// last access time. Ties go to the lowest way.
func (e *LRUVictimFinder) FindVictim(set *Set) *Line {
	if line := firstInvalid(set); line != nil {
		return line
	}

	victim := &set.Lines[0]
	for i := 1; i < len(set.Lines); i++ {
		if set.Lines[i].LastAccess < victim.LastAccess {
			victim = &set.Lines[i]
		}
	}

	return victim
}
