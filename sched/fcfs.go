package sched

import (
	"github.com/ezrec/sosim/process"
)

// Fcfs is the non-preemptive first come, first served policy.
type Fcfs struct {
	base
}

var _ Scheduler = (*Fcfs)(nil)

// NewFcfs creates a first come, first served scheduler.
func NewFcfs() *Fcfs {
	return &Fcfs{
		base: newBase(POLICY_FCFS, &fifo{}),
	}
}

func (sc *Fcfs) Configure(name string, value int) error {
	return sc.configure(name, value)
}

func (sc *Fcfs) Enqueue(pcb *process.Pcb) error {
	return sc.enqueue(pcb)
}

func (sc *Fcfs) Unblock(pcb *process.Pcb) (err error) {
	err = pcb.Wake()
	if err != nil {
		return
	}

	return sc.Enqueue(pcb)
}

func (sc *Fcfs) ShouldPreempt() bool {
	return false
}

func (sc *Fcfs) Pick() *process.Pcb {
	if sc.current != nil {
		return sc.current
	}

	return sc.dispatch()
}

func (sc *Fcfs) Tick() {
	sc.tick()
}
