// Package kernel implements the process manager of the simulated computer.
//
// The kernel owns the cpu, the memory manager and the scheduler. Each Tick
// asks the scheduler for a process, switches the cpu to its context, steps
// one instruction through its page table, and acts on the interrupt raised.
package kernel

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"os"
	"slices"

	"github.com/ezrec/sosim/config"
	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/internal"
	"github.com/ezrec/sosim/io"
	"github.com/ezrec/sosim/memory"
	"github.com/ezrec/sosim/process"
	"github.com/ezrec/sosim/sched"
)

// Kernel state. CPU + memory + scheduler + syscall device.
type Kernel struct {
	Verbose   bool             // If set, enables verbose logging.
	*cpu.Cpu                   // Reference to the CPU simulation.
	Memory    *memory.Manager  // Paged memory manager.
	Scheduler sched.Scheduler  // Current scheduling policy.
	Device    io.Device        // Syscall device.
	Config    config.Config    // Configuration the kernel was built from.
	Faults    []*ErrFault      // Faults collected by Run.
	Finished  []*process.Pcb   // Terminated processes, in order.
	History   []*sched.Metrics // Metrics of replaced schedulers.

	Cycles int // Instructions executed.

	nextPid int
	procs   map[int]*process.Pcb
	waiting []*process.Pcb
	bound   *process.Pcb
}

// New creates a kernel from a configuration.
func New(cfg config.Config) (k *Kernel, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	mm, err := memory.NewManager(cfg.Memory.Size, cfg.Memory.PageSize)
	if err != nil {
		return
	}

	cp := cpu.NewCpu()
	err = cp.SetBounds(cfg.Cpu.MinInt, cfg.Cpu.MaxInt)
	if err != nil {
		return
	}

	k = &Kernel{
		Cpu:    cp,
		Memory: mm,
		Device: &io.Console{Input: os.Stdin, Output: os.Stdout},
		Config: cfg,
		procs:  map[int]*process.Pcb{},
	}

	policy, err := sched.ParsePolicy(cfg.Scheduler.Policy)
	if err != nil {
		k = nil
		return
	}

	k.Scheduler, err = k.newScheduler(policy)
	if err != nil {
		k = nil
		return
	}

	k.SetTrace(cfg.Kernel.Verbose)

	return
}

// newScheduler creates a scheduler with the configured parameters.
func (k *Kernel) newScheduler(policy sched.Policy) (sc sched.Scheduler, err error) {
	sc, err = sched.New(policy)
	if err != nil {
		return
	}

	params := map[string]int{
		"quantum":  k.Config.Scheduler.Quantum,
		"estimate": k.Config.Scheduler.Estimate,
	}
	for name, value := range params {
		perr := sc.Configure(name, value)
		if perr != nil && !errors.Is(perr, sched.ErrParameterUnknown) {
			err = perr
			return
		}
	}

	return
}

// Defines returns an iterator over all of the defines
func (k *Kernel) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(map[string]string{
		"MAX_PROCESSES": fmt.Sprintf("%d", k.Config.Kernel.MaxProcesses),
	}),
		k.Cpu.Defines(),
		k.Memory.Defines(),
		k.Device.Defines(),
	)
}

// SetTrace enables or disables verbose logging of every component.
func (k *Kernel) SetTrace(on bool) {
	k.Verbose = on
	k.Cpu.Verbose = on
	k.Memory.Verbose = on
}

// Processes returns the live processes, ordered by pid.
func (k *Kernel) Processes() (list []*process.Pcb) {
	for _, pid := range slices.Sorted(maps.Keys(k.procs)) {
		list = append(list, k.procs[pid])
	}
	return
}

// Process returns a live process.
func (k *Kernel) Process(pid int) (pcb *process.Pcb, err error) {
	pcb, ok := k.procs[pid]
	if !ok {
		err = fmt.Errorf("%w: pid %d", ErrProcessUnknown, pid)
		return
	}
	return
}

// Create allocates memory for an image, and creates a NEW process for it.
func (k *Kernel) Create(name string, image []cpu.Cell) (pid int, err error) {
	if len(k.procs) >= k.Config.Kernel.MaxProcesses {
		err = fmt.Errorf("%w: %d running", ErrProcessLimit, len(k.procs))
		return
	}

	pid = k.nextPid + 1

	pt, err := k.Memory.Allocate(pid, len(image), image)
	if err != nil {
		pid = 0
		return
	}

	k.nextPid = pid
	k.procs[pid] = process.New(pid, name, pt, len(image))

	if k.Verbose {
		log.Printf("kernel: pid %d: created %q", pid, name)
	}

	return
}

// Admit moves a NEW process to the ready queue.
func (k *Kernel) Admit(pid int) (err error) {
	pcb, err := k.Process(pid)
	if err != nil {
		return
	}

	err = pcb.Admit()
	if err != nil {
		return
	}

	return k.Scheduler.Enqueue(pcb)
}

// Spawn creates and admits a process.
func (k *Kernel) Spawn(name string, image []cpu.Cell) (pid int, err error) {
	pid, err = k.Create(name, image)
	if err != nil {
		return
	}

	err = k.Admit(pid)

	return
}

// LoadProgram creates and admits a process running an assembled program.
func (k *Kernel) LoadProgram(prog *cpu.Program) (pid int, err error) {
	return k.Spawn(prog.Name, prog.Image())
}

// HasWork returns true while any process is ready, running or waiting.
func (k *Kernel) HasWork() bool {
	return k.Scheduler.HasWork() || len(k.waiting) > 0
}

// release terminates a process and returns its frames.
func (k *Kernel) release(pcb *process.Pcb) {
	if pcb.State != process.STATE_TERMINATED {
		_ = pcb.Terminate()
	}

	k.Memory.Deallocate(pcb.Pid, pcb.PageTable)
	delete(k.procs, pcb.Pid)
	k.Finished = append(k.Finished, pcb)

	if k.bound == pcb {
		k.bound = nil
	}
}

// Kill terminates a process in any state, and releases its memory.
func (k *Kernel) Kill(pid int) (err error) {
	pcb, err := k.Process(pid)
	if err != nil {
		return
	}

	k.Scheduler.Dequeue(pid)
	k.waiting = slices.DeleteFunc(k.waiting, func(entry *process.Pcb) bool {
		return entry.Pid == pid
	})

	k.release(pcb)

	if k.Verbose {
		log.Printf("kernel: pid %d: killed", pid)
	}

	return
}

// SetScheduler replaces the scheduling policy. The running process and the
// ready processes move to the new scheduler, in their current order.
func (k *Kernel) SetScheduler(policy sched.Policy) (err error) {
	sc, err := k.newScheduler(policy)
	if err != nil {
		return
	}

	old := k.Scheduler

	var moving []*process.Pcb
	if cur := old.Current(); cur != nil {
		old.Dequeue(cur.Pid)
		err = cur.Preempt()
		if err != nil {
			return
		}
		moving = append(moving, cur)
	}
	for _, pcb := range old.Ready() {
		old.Dequeue(pcb.Pid)
		moving = append(moving, pcb)
	}

	for _, pcb := range moving {
		err = sc.Enqueue(pcb)
		if err != nil {
			return
		}
	}

	k.History = append(k.History, old.Metrics())
	k.Scheduler = sc

	if k.Verbose {
		log.Printf("kernel: scheduler %v -> %v, %d processes moved", old.Policy(), policy, len(moving))
	}

	return
}

// Configure sets a parameter of the current scheduler.
func (k *Kernel) Configure(name string, value int) error {
	return k.Scheduler.Configure(name, value)
}

// contextSwitch binds the cpu to the context of a process.
func (k *Kernel) contextSwitch(pcb *process.Pcb) {
	if k.bound == pcb {
		return
	}

	if k.bound != nil {
		k.bound.Context = k.Cpu.Save()
	}

	if k.Verbose {
		from := 0
		if k.bound != nil {
			from = k.bound.Pid
		}
		log.Printf("kernel: switch pid %d -> pid %d", from, pcb.Pid)
	}

	k.Cpu.Load(pcb.Context)
	k.bound = pcb
}

// Tick performs a single cycle of the kernel.
func (k *Kernel) Tick() (done bool, err error) {
	for _, pcb := range k.waiting {
		err = k.Scheduler.Unblock(pcb)
		if err != nil {
			return
		}
	}
	k.waiting = nil

	pcb := k.Scheduler.Pick()
	if pcb == nil {
		done = !k.HasWork()
		return
	}

	k.contextSwitch(pcb)

	pc := k.Cpu.Save().Pc
	irq := k.Cpu.Step(k.Memory.Map(pcb.PageTable))
	pcb.Context = k.Cpu.Save()
	k.Cycles++

	k.Scheduler.Tick()

	switch {
	case irq == cpu.INT_SYSCALL:
		err = k.syscall(pcb, pc)
	case irq.Fault():
		err = k.fault(pcb, pc, irq, nil)
	case irq.Terminal():
		k.Scheduler.FinishCurrent()
		k.release(pcb)
		if k.Verbose {
			log.Printf("kernel: pid %d: finished", pcb.Pid)
		}
	}

	done = !k.HasWork()

	return
}

// fault terminates the running process.
func (k *Kernel) fault(pcb *process.Pcb, pc int, irq cpu.Interrupt, cause error) error {
	k.Scheduler.FinishCurrent()
	k.release(pcb)

	return &ErrFault{
		Pid:       pcb.Pid,
		Name:      pcb.Name,
		Pc:        pc,
		Interrupt: irq,
		Err:       cause,
	}
}

// Run ticks until no work remains, or maxCycles instructions have been
// executed. A maxCycles of zero or less is unlimited.
// Faults terminate only the faulting process; they are logged and collected
// in Faults.
func (k *Kernel) Run(maxCycles int) (cycles int, err error) {
	start := k.Cycles
	defer func() {
		cycles = k.Cycles - start
	}()

	for k.HasWork() {
		if maxCycles > 0 && k.Cycles-start >= maxCycles {
			err = fmt.Errorf("%w: %d cycles", ErrCycleLimit, maxCycles)
			return
		}

		var done bool
		done, err = k.Tick()
		if err != nil {
			var fault *ErrFault
			if !errors.As(err, &fault) {
				return
			}
			log.Printf("kernel: %v", fault)
			k.Faults = append(k.Faults, fault)
			err = nil
		}
		if done {
			break
		}
	}

	return
}
