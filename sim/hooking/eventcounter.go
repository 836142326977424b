package hooking

// EventCounter is a hook that counts how many times each hook position is
// triggered.
type EventCounter struct {
	posNames []string
	counts   map[string]uint64
}

// NewEventCounter creates a new EventCounter.
func NewEventCounter() *EventCounter {
	return &EventCounter{
		counts: make(map[string]uint64),
	}
}

// Func counts the position of the hook context.
func (c *EventCounter) Func(ctx HookCtx) {
	name := ctx.Pos.Name

	_, ok := c.counts[name]
	if !ok {
		c.posNames = append(c.posNames, name)
	}

	c.counts[name]++
}

// PosNames returns the names of all the positions seen, in the order they
// were first seen.
func (c *EventCounter) PosNames() []string {
	return c.posNames
}

// Count returns the number of times the position with the given name has
// been triggered.
func (c *EventCounter) Count(posName string) uint64 {
	return c.counts[posName]
}

// Reset forgets all the counts.
func (c *EventCounter) Reset() {
	c.posNames = nil
	c.counts = make(map[string]uint64)
}
