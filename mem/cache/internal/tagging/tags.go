// Package tagging keeps track of which memory blocks a cache holds.
package tagging

// A Line is the bookkeeping of one cache way. No data is stored.
type Line struct {
	Valid          bool
	Dirty          bool
	Tag            uint64
	InsertionOrder uint64
	LastAccess     uint64
	SetID          int
	WayID          int
}

// A Set is the list of lines a certain piece of memory can be stored at.
type Set struct {
	Lines []Line
}

// A TagArray holds all the sets of a cache.
type TagArray struct {
	NumSets   int
	NumWays   int
	BlockSize uint64
	Sets      []Set
}

// NewTagArray creates a tag array with every line invalid.
func NewTagArray(numSets, numWays int, blockSize uint64) *TagArray {
	t := &TagArray{
		NumSets:   numSets,
		NumWays:   numWays,
		BlockSize: blockSize,
	}

	t.Reset()

	return t
}

// TotalSize returns the number of bytes the cache can hold.
func (t *TagArray) TotalSize() uint64 {
	return uint64(t.NumSets) * uint64(t.NumWays) * t.BlockSize
}

// SetID returns the set that addr maps to.
func (t *TagArray) SetID(addr uint64) int {
	return int(addr / t.BlockSize % uint64(t.NumSets))
}

// Tag returns the tag stored for addr.
func (t *TagArray) Tag(addr uint64) uint64 {
	return addr / t.BlockSize / uint64(t.NumSets)
}

// GetSet returns the set that a certain address should be stored at.
func (t *TagArray) GetSet(addr uint64) (set *Set, setID int) {
	setID = t.SetID(addr)
	set = &t.Sets[setID]

	return
}

// Lookup finds the valid line that holds addr.
func (t *TagArray) Lookup(addr uint64) (*Line, bool) {
	set, _ := t.GetSet(addr)
	tag := t.Tag(addr)

	for i := range set.Lines {
		line := &set.Lines[i]
		if line.Valid && line.Tag == tag {
			return line, true
		}
	}

	return nil, false
}

// BlockAddress returns the address of the first byte of the block held by
// the line.
func (t *TagArray) BlockAddress(line Line) uint64 {
	return (line.Tag*uint64(t.NumSets) + uint64(line.SetID)) * t.BlockSize
}

// Snapshot returns a copy of all the lines, indexed by set and way.
func (t *TagArray) Snapshot() [][]Line {
	lines := make([][]Line, len(t.Sets))
	for i, set := range t.Sets {
		lines[i] = append([]Line(nil), set.Lines...)
	}

	return lines
}

// Reset marks all the lines invalid.
func (t *TagArray) Reset() {
	t.Sets = make([]Set, t.NumSets)
	for i := 0; i < t.NumSets; i++ {
		t.Sets[i].Lines = make([]Line, t.NumWays)
		for j := 0; j < t.NumWays; j++ {
			t.Sets[i].Lines[j] = Line{SetID: i, WayID: j}
		}
	}
}
