package sched

import (
	"container/heap"

	"github.com/ezrec/sosim/process"
)

const (
	DEFAULT_ESTIMATE = 5   // Minimum initial execution estimate, in cycles.
	ESTIMATE_ALPHA   = 0.3 // Weight of the observed cycles in a new estimate.
)

// shortest is a ready queue ordered by (estimate, pid).
type shortest []*process.Pcb

func (h shortest) Len() int { return len(h) }

func (h shortest) Less(i, j int) bool {
	if h[i].Estimate != h[j].Estimate {
		return h[i].Estimate < h[j].Estimate
	}
	return h[i].Pid < h[j].Pid
}

func (h shortest) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *shortest) Push(x any) { *h = append(*h, x.(*process.Pcb)) }

func (h *shortest) Pop() (x any) {
	old := *h
	x = old[len(old)-1]
	*h = old[:len(old)-1]
	return
}

func (h *shortest) push(pcb *process.Pcb) {
	heap.Push(h, pcb)
}

func (h *shortest) pop() *process.Pcb {
	if len(*h) == 0 {
		return nil
	}
	return heap.Pop(h).(*process.Pcb)
}

func (h *shortest) remove(pid int) *process.Pcb {
	for n, pcb := range *h {
		if pcb.Pid == pid {
			return heap.Remove(h, n).(*process.Pcb)
		}
	}
	return nil
}

func (h *shortest) list() (list []*process.Pcb) {
	sorted := append(shortest(nil), (*h)...)
	for sorted.Len() > 0 {
		list = append(list, sorted.pop())
	}
	return
}

func (h *shortest) len() int {
	return len(*h)
}

// Sjf is the non-preemptive shortest job first policy, with execution
// estimates refined by exponential averaging.
type Sjf struct {
	base
	estimate int
}

var _ Scheduler = (*Sjf)(nil)

// NewSjf creates a shortest job first scheduler.
func NewSjf() *Sjf {
	return &Sjf{
		base:     newBase(POLICY_SJF, &shortest{}),
		estimate: DEFAULT_ESTIMATE,
	}
}

func (sc *Sjf) Configure(name string, value int) (err error) {
	if name != "estimate" {
		return sc.configure(name, value)
	}

	err = positive(name, value)
	if err != nil {
		return
	}

	sc.estimate = value

	return
}

func (sc *Sjf) Enqueue(pcb *process.Pcb) (err error) {
	if pcb.State != process.STATE_READY {
		return sc.enqueue(pcb)
	}

	if pcb.Estimate == process.ESTIMATE_UNSET {
		pcb.Estimate = max(sc.estimate, 2*pcb.Length)
	}

	return sc.enqueue(pcb)
}

func (sc *Sjf) Unblock(pcb *process.Pcb) (err error) {
	err = pcb.Wake()
	if err != nil {
		return
	}

	return sc.Enqueue(pcb)
}

func (sc *Sjf) ShouldPreempt() bool {
	return false
}

func (sc *Sjf) Pick() *process.Pcb {
	if sc.current != nil {
		return sc.current
	}

	return sc.dispatch()
}

func (sc *Sjf) Tick() {
	sc.tick()

	pcb := sc.current
	if pcb != nil && pcb.CpuCycles > 0 {
		pcb.Estimate = int(ESTIMATE_ALPHA*float64(pcb.CpuCycles) + (1-ESTIMATE_ALPHA)*float64(pcb.Estimate))
	}
}
