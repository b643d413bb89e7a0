package sched

import (
	"fmt"
	"io"

	"github.com/ezrec/sosim/process"
)

// Metrics are the statistics of a scheduler.
type Metrics struct {
	Policy Policy // Policy collecting the metrics.

	ContextSwitches int // Dispatches performed.
	Cycles          int // Cycles accounted.
	Started         int // Processes dispatched at least once.
	Finished        int // Processes terminated from RUNNING.
	Blocked         int // Processes moved to WAITING.

	TotalWait       int // Sum of the wait cycles of finished processes.
	TotalTurnaround int // Sum of the turnaround of finished processes.
	TotalResponse   int // Sum of the response times of started processes.
}

func (m *Metrics) finish(pcb *process.Pcb) {
	m.Finished++
	m.TotalWait += pcb.WaitCycles
	m.TotalTurnaround += pcb.Turnaround()
}

func average(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// AverageWait returns the mean wait time of finished processes.
func (m *Metrics) AverageWait() float64 {
	return average(m.TotalWait, m.Finished)
}

// AverageTurnaround returns the mean turnaround of finished processes.
func (m *Metrics) AverageTurnaround() float64 {
	return average(m.TotalTurnaround, m.Finished)
}

// AverageResponse returns the mean response time of started processes.
func (m *Metrics) AverageResponse() float64 {
	return average(m.TotalResponse, m.Started)
}

// Overhead returns the context switches per hundred cycles.
func (m *Metrics) Overhead() float64 {
	if m.Cycles == 0 {
		return 0
	}
	return float64(m.ContextSwitches) / float64(m.Cycles) * 100
}

// Utilization returns the percentage of cycles not lost to switching.
func (m *Metrics) Utilization() float64 {
	if m.Cycles == 0 {
		return 0
	}
	return 100 - m.Overhead()
}

// Report writes the metrics, one per line.
func (m *Metrics) Report(w io.Writer) (err error) {
	lines := []struct {
		name  string
		value any
	}{
		{"policy", m.Policy},
		{"cycles", m.Cycles},
		{"context switches", m.ContextSwitches},
		{"processes started", m.Started},
		{"processes finished", m.Finished},
		{"processes blocked", m.Blocked},
		{"average wait", fmt.Sprintf("%.2f", m.AverageWait())},
		{"average turnaround", fmt.Sprintf("%.2f", m.AverageTurnaround())},
		{"average response", fmt.Sprintf("%.2f", m.AverageResponse())},
		{"overhead %", fmt.Sprintf("%.2f", m.Overhead())},
		{"utilization %", fmt.Sprintf("%.2f", m.Utilization())},
	}

	for _, line := range lines {
		_, err = fmt.Fprintf(w, "%-20s %v\n", line.name+":", line.value)
		if err != nil {
			return
		}
	}

	return
}

// Compare writes the metrics side by side with others, one column per policy.
func (m *Metrics) Compare(w io.Writer, others ...*Metrics) (err error) {
	all := append([]*Metrics{m}, others...)

	rows := []struct {
		name  string
		value func(m *Metrics) string
	}{
		{"cycles", func(m *Metrics) string { return fmt.Sprintf("%d", m.Cycles) }},
		{"switches", func(m *Metrics) string { return fmt.Sprintf("%d", m.ContextSwitches) }},
		{"finished", func(m *Metrics) string { return fmt.Sprintf("%d", m.Finished) }},
		{"avg wait", func(m *Metrics) string { return fmt.Sprintf("%.2f", m.AverageWait()) }},
		{"avg turnaround", func(m *Metrics) string { return fmt.Sprintf("%.2f", m.AverageTurnaround()) }},
		{"avg response", func(m *Metrics) string { return fmt.Sprintf("%.2f", m.AverageResponse()) }},
		{"overhead %", func(m *Metrics) string { return fmt.Sprintf("%.2f", m.Overhead()) }},
		{"utilization %", func(m *Metrics) string { return fmt.Sprintf("%.2f", m.Utilization()) }},
	}

	_, err = fmt.Fprintf(w, "%-16s", "")
	for _, entry := range all {
		if err == nil {
			_, err = fmt.Fprintf(w, " %10v", entry.Policy)
		}
	}
	if err == nil {
		_, err = fmt.Fprintln(w)
	}

	for _, row := range rows {
		if err == nil {
			_, err = fmt.Fprintf(w, "%-16s", row.name)
		}
		for _, entry := range all {
			if err == nil {
				_, err = fmt.Fprintf(w, " %10s", row.value(entry))
			}
		}
		if err == nil {
			_, err = fmt.Fprintln(w)
		}
	}

	return
}
