package kernel

import (
	"errors"

	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	ErrProcessLimit   = errors.New(f("too many processes"))
	ErrProcessUnknown = errors.New(f("no such process"))
	ErrCycleLimit     = errors.New(f("cycle limit reached"))
	ErrProgramFault   = errors.New(f("program fault"))
)

// ErrFault reports a process terminated by a fault.
type ErrFault struct {
	Pid       int           // Process identifier.
	Name      string        // Program name.
	Pc        int           // Program counter of the faulting instruction.
	Interrupt cpu.Interrupt // Interrupt raised.
	Err       error         // Cause, if the fault came from a syscall device.
}

func (err *ErrFault) Error() string {
	if err.Err != nil {
		return f("pid %v (%v): pc %v: %v: %v", err.Pid, err.Name, err.Pc, err.Interrupt, err.Err)
	}
	return f("pid %v (%v): pc %v: %v", err.Pid, err.Name, err.Pc, err.Interrupt)
}

func (err *ErrFault) Unwrap() []error {
	if err.Err != nil {
		return []error{ErrProgramFault, err.Err}
	}
	return []error{ErrProgramFault}
}
