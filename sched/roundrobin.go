package sched

import (
	"github.com/ezrec/sosim/process"
)

const (
	DEFAULT_QUANTUM = 10 // Default round robin time slice, in cycles.
)

// RoundRobin is the preemptive first come, first served policy, with a
// fixed time slice per dispatch.
type RoundRobin struct {
	base
	quantum int
}

var _ Scheduler = (*RoundRobin)(nil)

// NewRoundRobin creates a round robin scheduler.
func NewRoundRobin(quantum int) *RoundRobin {
	if quantum <= 0 {
		quantum = DEFAULT_QUANTUM
	}

	return &RoundRobin{
		base:    newBase(POLICY_RR, &fifo{}),
		quantum: quantum,
	}
}

// Quantum returns the time slice.
func (sc *RoundRobin) Quantum() int {
	return sc.quantum
}

func (sc *RoundRobin) Configure(name string, value int) (err error) {
	if name != "quantum" {
		return sc.configure(name, value)
	}

	err = positive(name, value)
	if err != nil {
		return
	}

	sc.quantum = value

	return
}

func (sc *RoundRobin) Enqueue(pcb *process.Pcb) (err error) {
	err = sc.enqueue(pcb)
	if err != nil {
		return
	}

	pcb.Quantum = sc.quantum

	return
}

func (sc *RoundRobin) Unblock(pcb *process.Pcb) (err error) {
	err = pcb.Wake()
	if err != nil {
		return
	}

	return sc.Enqueue(pcb)
}

func (sc *RoundRobin) ShouldPreempt() bool {
	return sc.current != nil && sc.current.Quantum <= 0
}

func (sc *RoundRobin) Pick() *process.Pcb {
	if sc.ShouldPreempt() {
		if sc.ready.len() == 0 {
			// Nobody to yield to.
			sc.current.Quantum = sc.quantum
			return sc.current
		}

		pcb := sc.current
		sc.current = nil
		_ = pcb.Preempt()
		_ = sc.Enqueue(pcb)
	}

	if sc.current != nil {
		return sc.current
	}

	return sc.dispatch()
}

func (sc *RoundRobin) Tick() {
	sc.tick()

	if sc.current != nil {
		sc.current.Quantum--
	}
}
