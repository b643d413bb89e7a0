package memory

import (
	"errors"

	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	// Configuration errors
	ErrConfigSize     = errors.New(f("memory and page sizes must be positive"))
	ErrConfigPageSize = errors.New(f("memory size must be a multiple of the page size"))

	// Allocation errors
	ErrAllocation     = errors.New(f("not enough free frames"))
	ErrAllocationSize = errors.New(f("allocation size invalid"))

	// Access errors
	ErrInvalidAddress = errors.New(f("invalid address"))
)

// ErrAddress describes a failed translation.
type ErrAddress struct {
	Addr int    // Logical address.
	Why  string // Reason for the failure.
}

func (err *ErrAddress) Error() string {
	return f("address %d: %v", err.Addr, err.Why)
}

func (err *ErrAddress) Unwrap() error {
	return ErrInvalidAddress
}
