package mem

// AccessKind tells whether an access reads or writes memory.
type AccessKind int

// The two kinds of memory access.
const (
	ReadAccess AccessKind = iota
	WriteAccess
)

func (k AccessKind) String() string {
	if k == WriteAccess {
		return "write"
	}

	return "read"
}

// AccessKindOf converts the isWrite flag used across the simulator into an
// AccessKind.
func AccessKindOf(isWrite bool) AccessKind {
	if isWrite {
		return WriteAccess
	}

	return ReadAccess
}

// IsPowerOfTwo returns true if n is a positive power of two.
func IsPowerOfTwo(n uint64) bool {
	return n > 0 && n&(n-1) == 0
}

// MaxPowerOfTwo is the largest power of two that fits in a uint64.
const MaxPowerOfTwo = uint64(1) << 63

// NextPowerOfTwo returns the smallest power of two that is greater than or
// equal to n. It returns 1 for n == 0. The bool is false if the result does
// not fit in a uint64.
func NextPowerOfTwo(n uint64) (uint64, bool) {
	if n > MaxPowerOfTwo {
		return 0, false
	}

	p := uint64(1)
	for p < n {
		p <<= 1
	}

	return p, true
}
