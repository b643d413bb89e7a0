package kernel

import (
	"fmt"
	"io"
)

// Ps writes a table of the live processes.
func (k *Kernel) Ps(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "%5s %-24s %-10s %5s %6s %6s %s\n", "PID", "NAME", "STATE", "PC", "CPU", "WAIT", "FRAMES")
	if err != nil {
		return
	}

	for _, pcb := range k.Processes() {
		_, err = fmt.Fprintf(w, "%5d %-24s %-10v %5d %6d %6d %v\n",
			pcb.Pid, pcb.Name, pcb.State, pcb.Context.Pc, pcb.CpuCycles, pcb.WaitCycles, []int(pcb.PageTable))
		if err != nil {
			return
		}
	}

	return
}

// Dump writes the control block, context and memory of a process.
func (k *Kernel) Dump(w io.Writer, pid int) (err error) {
	pcb, err := k.Process(pid)
	if err != nil {
		return
	}

	_, err = fmt.Fprintf(w, "pid %d %q %v length=%d cpu=%d wait=%d response=%d estimate=%d quantum=%d\n",
		pcb.Pid, pcb.Name, pcb.State, pcb.Length,
		pcb.CpuCycles, pcb.WaitCycles, pcb.Response, pcb.Estimate, pcb.Quantum)
	if err != nil {
		return
	}

	_, err = fmt.Fprintf(w, "%v\n", pcb.Context)
	if err != nil {
		return
	}

	return k.Memory.DumpPageTable(w, pcb.PageTable)
}

// DumpMemory writes the physical cells in [start, end).
func (k *Kernel) DumpMemory(w io.Writer, start, end int) error {
	return k.Memory.Dump(w, start, end)
}

// Report writes the scheduler metrics, and a summary of finished processes.
func (k *Kernel) Report(w io.Writer) (err error) {
	for _, metrics := range k.History {
		err = metrics.Report(w)
		if err != nil {
			return
		}
		_, err = fmt.Fprintln(w)
		if err != nil {
			return
		}
	}

	err = k.Scheduler.Metrics().Report(w)
	if err != nil {
		return
	}

	_, err = fmt.Fprintf(w, "%-20s %d\n", "faults:", len(k.Faults))
	if err != nil {
		return
	}

	if len(k.Finished) == 0 {
		return
	}

	_, err = fmt.Fprintf(w, "\n%5s %-24s %6s %6s %6s %8s\n", "PID", "NAME", "CPU", "WAIT", "RESP", "TURNAROUND")
	if err != nil {
		return
	}

	for _, pcb := range k.Finished {
		_, err = fmt.Fprintf(w, "%5d %-24s %6d %6d %6d %8d\n",
			pcb.Pid, pcb.Name, pcb.CpuCycles, pcb.WaitCycles, pcb.Response, pcb.Turnaround())
		if err != nil {
			return
		}
	}

	return
}
