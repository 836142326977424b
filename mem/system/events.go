package system

import (
	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/pipeline"
)

// AllocationEvent is the item of the hooks invoked at HookPosAllocate.
type AllocationEvent struct {
	Size uint64
	ID   alloc.BlockID
	Err  error
}

// DeallocationEvent is the item of the hooks invoked at HookPosDeallocate.
type DeallocationEvent struct {
	ID  alloc.BlockID
	Err error
}

// AccessEvent is the item of the hooks invoked at HookPosAccess.
type AccessEvent struct {
	Address uint64
	IsWrite bool
	Report  pipeline.AccessReport
	Err     error
}
