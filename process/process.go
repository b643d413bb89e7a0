// Package process holds the process control block and its state machine.
package process

import (
	"fmt"

	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/memory"
)

// State is the lifecycle state of a process.
type State int

//go:generate go tool stringer -linecomment -type=State

const (
	STATE_NEW        = State(0) // NEW
	STATE_READY      = State(1) // READY
	STATE_RUNNING    = State(2) // RUNNING
	STATE_WAITING    = State(3) // WAITING
	STATE_TERMINATED = State(4) // TERMINATED
)

const (
	RESPONSE_UNSET = -1 // Response time of a never dispatched process.
	ESTIMATE_UNSET = 0  // Execution estimate not yet assigned.
)

// transitions lists the legal next states of each state.
var transitions = map[State][]State{
	STATE_NEW:     {STATE_READY, STATE_TERMINATED},
	STATE_READY:   {STATE_RUNNING, STATE_TERMINATED},
	STATE_RUNNING: {STATE_READY, STATE_WAITING, STATE_TERMINATED},
	STATE_WAITING: {STATE_READY, STATE_TERMINATED},
}

// CanTransition returns true if the state may move to next.
func (state State) CanTransition(next State) bool {
	for _, allowed := range transitions[state] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Pcb is the process control block.
type Pcb struct {
	Pid       int              // Process identifier, unique and positive.
	Name      string           // Program name.
	State     State            // Lifecycle state.
	Context   cpu.Context      // Saved execution context.
	PageTable memory.PageTable // Logical page to frame mapping.
	Length    int              // Program length, in cells.

	CpuCycles  int // Cycles spent running.
	WaitCycles int // Cycles spent ready.
	Response   int // Wait cycles before the first dispatch, or RESPONSE_UNSET.
	Estimate   int // Estimated execution time, or ESTIMATE_UNSET.
	Quantum    int // Remaining time slice.
}

// New creates a process control block in the NEW state.
func New(pid int, name string, pt memory.PageTable, length int) *Pcb {
	return &Pcb{
		Pid:       pid,
		Name:      name,
		State:     STATE_NEW,
		PageTable: pt,
		Length:    length,
		Response:  RESPONSE_UNSET,
		Estimate:  ESTIMATE_UNSET,
	}
}

// String returns a one line summary of the process.
func (pcb *Pcb) String() string {
	return fmt.Sprintf("%d %s %v pc=%d cpu=%d wait=%d",
		pcb.Pid, pcb.Name, pcb.State, pcb.Context.Pc, pcb.CpuCycles, pcb.WaitCycles)
}

// Turnaround returns the total cycles the process has been in the system.
func (pcb *Pcb) Turnaround() int {
	return pcb.CpuCycles + pcb.WaitCycles
}

// Dispatched returns true once the process has been run at least once.
func (pcb *Pcb) Dispatched() bool {
	return pcb.Response != RESPONSE_UNSET
}

// Transition moves the process to the next state, if legal.
func (pcb *Pcb) Transition(next State) (err error) {
	if !pcb.State.CanTransition(next) {
		err = &ErrStateChange{Pid: pcb.Pid, From: pcb.State, To: next}
		return
	}

	pcb.State = next

	return
}

// Admit moves a NEW process to READY.
func (pcb *Pcb) Admit() (err error) {
	if pcb.State != STATE_NEW {
		err = &ErrStateChange{Pid: pcb.Pid, From: pcb.State, To: STATE_READY}
		return
	}
	return pcb.Transition(STATE_READY)
}

// Dispatch moves a READY process to RUNNING, recording the response time
// on its first dispatch.
func (pcb *Pcb) Dispatch() (err error) {
	if pcb.State != STATE_READY {
		err = &ErrStateChange{Pid: pcb.Pid, From: pcb.State, To: STATE_RUNNING}
		return
	}

	err = pcb.Transition(STATE_RUNNING)
	if err != nil {
		return
	}

	if !pcb.Dispatched() {
		pcb.Response = pcb.WaitCycles
	}

	return
}

// Preempt moves a RUNNING process back to READY.
func (pcb *Pcb) Preempt() (err error) {
	if pcb.State != STATE_RUNNING {
		err = &ErrStateChange{Pid: pcb.Pid, From: pcb.State, To: STATE_READY}
		return
	}
	return pcb.Transition(STATE_READY)
}

// Block moves a RUNNING process to WAITING.
func (pcb *Pcb) Block() (err error) {
	return pcb.Transition(STATE_WAITING)
}

// Wake moves a WAITING process to READY.
func (pcb *Pcb) Wake() (err error) {
	if pcb.State != STATE_WAITING {
		err = &ErrStateChange{Pid: pcb.Pid, From: pcb.State, To: STATE_READY}
		return
	}
	return pcb.Transition(STATE_READY)
}

// Terminate moves the process to TERMINATED.
func (pcb *Pcb) Terminate() (err error) {
	return pcb.Transition(STATE_TERMINATED)
}
