// Package sched provides the CPU scheduling policies of the simulated
// computer, and the metrics they collect.
//
// A scheduler owns the ready processes and the running one. The kernel
// asks it for the process to run with Pick, advances it with Tick, and
// reports the outcome of the cycle with BlockCurrent or FinishCurrent.
package sched

import (
	"fmt"
	"strings"

	"github.com/ezrec/sosim/process"
)

// Policy names a scheduling algorithm.
type Policy int

//go:generate go tool stringer -linecomment -type=Policy

const (
	POLICY_RR   = Policy(0) // RR
	POLICY_FCFS = Policy(1) // FCFS
	POLICY_SJF  = Policy(2) // SJF
)

// Policies lists every scheduling policy.
var Policies = []Policy{POLICY_RR, POLICY_FCFS, POLICY_SJF}

// ParsePolicy returns the policy of a name, ignoring case.
func ParsePolicy(name string) (policy Policy, err error) {
	for _, policy = range Policies {
		if strings.EqualFold(policy.String(), name) {
			return
		}
	}

	err = fmt.Errorf("%w: %q", ErrPolicyUnknown, name)
	return
}

// Scheduler is a CPU scheduling policy.
type Scheduler interface {
	// Enqueue adds a READY process to the ready queue.
	Enqueue(pcb *process.Pcb) error
	// Dequeue removes a process, ready or running, without changing its state.
	Dequeue(pid int) *process.Pcb
	// Pick returns the process to run for the next cycle, dispatching
	// a new one if needed. It returns nil if no process can run.
	Pick() *process.Pcb
	// Tick accounts for one cycle of the running process.
	Tick()
	// ShouldPreempt returns true if the running process must yield.
	ShouldPreempt() bool
	// BlockCurrent moves the running process to WAITING and returns it.
	BlockCurrent() *process.Pcb
	// Unblock returns a WAITING process to the ready queue.
	Unblock(pcb *process.Pcb) error
	// FinishCurrent terminates the running process and returns it.
	FinishCurrent() *process.Pcb
	// Current returns the running process, if any.
	Current() *process.Pcb
	// HasWork returns true while a process is running or ready.
	HasWork() bool
	// Ready returns the ready processes, in dispatch order.
	Ready() []*process.Pcb
	// Metrics returns the statistics collected so far.
	Metrics() *Metrics
	// Configure sets a named policy parameter.
	Configure(name string, value int) error
	// Policy returns the scheduling policy.
	Policy() Policy
}

// New creates a scheduler for a policy.
func New(policy Policy) (sc Scheduler, err error) {
	switch policy {
	case POLICY_RR:
		sc = NewRoundRobin(DEFAULT_QUANTUM)
	case POLICY_FCFS:
		sc = NewFcfs()
	case POLICY_SJF:
		sc = NewSjf()
	default:
		err = fmt.Errorf("%w: %v", ErrPolicyUnknown, policy)
	}

	return
}

// queue holds the ready processes of a policy.
type queue interface {
	push(pcb *process.Pcb)
	pop() *process.Pcb
	remove(pid int) *process.Pcb
	list() []*process.Pcb
	len() int
}

// fifo is a first in, first out ready queue.
type fifo []*process.Pcb

func (q *fifo) push(pcb *process.Pcb) {
	*q = append(*q, pcb)
}

func (q *fifo) pop() (pcb *process.Pcb) {
	if len(*q) == 0 {
		return
	}
	pcb = (*q)[0]
	*q = (*q)[1:]
	return
}

func (q *fifo) remove(pid int) (pcb *process.Pcb) {
	for n, entry := range *q {
		if entry.Pid == pid {
			pcb = entry
			*q = append((*q)[:n], (*q)[n+1:]...)
			return
		}
	}
	return
}

func (q *fifo) list() []*process.Pcb {
	return append([]*process.Pcb(nil), (*q)...)
}

func (q *fifo) len() int {
	return len(*q)
}

// base is the policy independent part of a scheduler.
type base struct {
	policy  Policy
	ready   queue
	current *process.Pcb
	metrics Metrics
	started map[int]bool // Pids dispatched by this scheduler.
}

func newBase(policy Policy, ready queue) base {
	return base{
		policy:  policy,
		ready:   ready,
		metrics: Metrics{Policy: policy},
		started: map[int]bool{},
	}
}

func (sc *base) Policy() Policy {
	return sc.policy
}

func (sc *base) Metrics() *Metrics {
	return &sc.metrics
}

func (sc *base) Current() *process.Pcb {
	return sc.current
}

func (sc *base) HasWork() bool {
	return sc.current != nil || sc.ready.len() > 0
}

func (sc *base) Ready() []*process.Pcb {
	return sc.ready.list()
}

func (sc *base) enqueue(pcb *process.Pcb) (err error) {
	if pcb.State != process.STATE_READY {
		err = fmt.Errorf("%w: pid %d is %v", ErrNotReady, pcb.Pid, pcb.State)
		return
	}

	sc.ready.push(pcb)

	return
}

func (sc *base) Dequeue(pid int) (pcb *process.Pcb) {
	if sc.current != nil && sc.current.Pid == pid {
		pcb = sc.current
		sc.current = nil
		return
	}

	return sc.ready.remove(pid)
}

// dispatch makes the head of the ready queue the running process.
func (sc *base) dispatch() *process.Pcb {
	pcb := sc.ready.pop()
	if pcb == nil {
		return nil
	}

	// Only READY processes are ever queued.
	_ = pcb.Dispatch()

	sc.current = pcb
	sc.metrics.ContextSwitches++

	// Processes migrated from another scheduler keep the response time
	// of their first dispatch, and are started here on their first one.
	if !sc.started[pcb.Pid] {
		sc.started[pcb.Pid] = true
		sc.metrics.Started++
		sc.metrics.TotalResponse += pcb.Response
	}

	return pcb
}

// tick accounts one cycle to the running and the ready processes.
func (sc *base) tick() {
	sc.metrics.Cycles++

	if sc.current != nil {
		sc.current.CpuCycles++
	}

	for _, pcb := range sc.ready.list() {
		pcb.WaitCycles++
	}
}

func (sc *base) BlockCurrent() (pcb *process.Pcb) {
	pcb = sc.current
	if pcb == nil {
		return
	}

	_ = pcb.Block()
	sc.current = nil
	sc.metrics.Blocked++

	return
}

func (sc *base) FinishCurrent() (pcb *process.Pcb) {
	pcb = sc.current
	if pcb == nil {
		return
	}

	_ = pcb.Terminate()
	sc.current = nil
	sc.metrics.finish(pcb)

	return
}

func (sc *base) configure(name string, value int) (err error) {
	err = fmt.Errorf("%w: %v has no parameter %q", ErrParameterUnknown, sc.policy, name)
	return
}

// positive validates a parameter value.
func positive(name string, value int) (err error) {
	if value <= 0 {
		err = fmt.Errorf("%w: %s = %d", ErrParameterValue, name, value)
	}
	return
}
