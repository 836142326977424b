package mem

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures that the memory subsystem reports.
type ErrorKind int

// All the error kinds reported by the memory subsystem.
const (
	ZeroSizeRequest ErrorKind = iota
	InsufficientMemory
	UnknownBlockID
	InvalidVirtualAddress
	NonPowerOfTwoConfig
	InvalidConfig
	NotInitialized
)

var errorKindNames = map[ErrorKind]string{
	ZeroSizeRequest:       "ZeroSizeRequest",
	InsufficientMemory:    "InsufficientMemory",
	UnknownBlockID:        "UnknownBlockId",
	InvalidVirtualAddress: "InvalidVirtualAddress",
	NonPowerOfTwoConfig:   "NonPowerOfTwoConfig",
	InvalidConfig:         "InvalidConfig",
	NotInitialized:        "NotInitialized",
}

func (k ErrorKind) String() string {
	name, ok := errorKindNames[k]
	if !ok {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}

	return name
}

// An Error is a typed failure. Two errors are considered the same by
// errors.Is when they have the same kind.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}

	return e.Kind.String() + ": " + e.Msg
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// NewError creates an error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Sentinels that can be used with errors.Is.
var (
	ErrZeroSizeRequest       = &Error{Kind: ZeroSizeRequest}
	ErrInsufficientMemory    = &Error{Kind: InsufficientMemory}
	ErrUnknownBlockID        = &Error{Kind: UnknownBlockID}
	ErrInvalidVirtualAddress = &Error{Kind: InvalidVirtualAddress}
	ErrNonPowerOfTwoConfig   = &Error{Kind: NonPowerOfTwoConfig}
	ErrInvalidConfig         = &Error{Kind: InvalidConfig}
	ErrNotInitialized        = &Error{Kind: NotInitialized}
)

// KindOf extracts the error kind. The bool is false if err is not an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}

	return e.Kind, true
}

// A Warning is a recoverable outcome. The operation that produced it
// succeeded with an adjusted configuration.
type Warning struct {
	Kind ErrorKind
	Msg  string
}

func (w Warning) String() string {
	return w.Kind.String() + ": " + w.Msg
}
