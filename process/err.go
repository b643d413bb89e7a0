package process

import (
	"errors"

	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	ErrTransition = errors.New(f("invalid state transition"))
)

// ErrStateChange describes a rejected state transition.
type ErrStateChange struct {
	Pid  int
	From State
	To   State
}

func (err *ErrStateChange) Error() string {
	return f("pid %v: %v -> %v", err.Pid, err.From, err.To)
}

func (err *ErrStateChange) Unwrap() error {
	return ErrTransition
}
