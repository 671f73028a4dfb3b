// Tracks simulation-wide and per-process scheduling statistics.

package sim

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ProcessMetrics aggregates the performance measurements of one process.
// Times are in milliseconds.
type ProcessMetrics struct {
	PID             int
	TurnaroundTime  int64 // creation to termination
	ResponseTime    int64 // creation to first run
	WaitingTime     int64 // turnaround - execution
	ExecutionTime   int64 // time actually running
	ContextSwitches int   // times this process was switched in
	QueueChanges    int   // times it moved between queues

	finalized bool // termination recorded
}

// Stats is the system-wide scheduler statistics engine. It is purely
// observational: callers report events (creation, context switch, queue
// change, execution time, termination) and Stats derives aggregates on
// demand. It never mutates scheduler or process state.
//
// Recording calls against a PID that was never enrolled via RecordCreated
// are silently dropped.
//
// Not safe for concurrent use.
type Stats struct {
	processMetrics map[int]*ProcessMetrics

	TotalContextSwitches int64
	TotalTicks           int64
	ProcessesCreated     int
	ProcessesTerminated  int
	TotalExecutionTime   int64
	TotalWaitingTime     int64

	queueDepthSamples [][NumQueues]int
	startTime         time.Time
}

// NewStats returns an empty statistics engine.
func NewStats() *Stats {
	return &Stats{
		processMetrics: make(map[int]*ProcessMetrics),
		startTime:      time.Now(),
	}
}

// RecordCreated enrolls a zeroed metrics record for the PID. Must precede any
// other recording call for that PID.
func (s *Stats) RecordCreated(pid int) {
	s.ProcessesCreated++
	s.processMetrics[pid] = &ProcessMetrics{PID: pid}
}

// RecordContextSwitch counts a context switch for the PID and system-wide.
func (s *Stats) RecordContextSwitch(pid int) {
	m, ok := s.processMetrics[pid]
	if !ok {
		return
	}
	s.TotalContextSwitches++
	m.ContextSwitches++
}

// RecordQueueChange counts a queue move for the PID.
func (s *Stats) RecordQueueChange(pid int) {
	m, ok := s.processMetrics[pid]
	if !ok {
		return
	}
	m.QueueChanges++
}

// RecordExecutionTime accumulates execution time for the PID and system-wide.
// Negative durations are dropped.
func (s *Stats) RecordExecutionTime(pid int, duration int64) {
	if duration < 0 {
		return
	}
	m, ok := s.processMetrics[pid]
	if !ok {
		return
	}
	s.TotalExecutionTime += duration
	m.ExecutionTime += duration
}

// RecordTerminated finalizes a process's metrics: turnaround and response are
// stored as given, waiting is derived as max(0, turnaround - execution) and
// folded into the system total. Termination is single-fire: a repeat call for
// the same PID overwrites the stored values (backing the previous waiting
// contribution out of the total) instead of accumulating.
func (s *Stats) RecordTerminated(pid int, turnaround, response int64) {
	m, ok := s.processMetrics[pid]
	if !ok {
		return
	}
	if m.finalized {
		s.TotalWaitingTime -= m.WaitingTime
	} else {
		s.ProcessesTerminated++
		m.finalized = true
	}
	m.TurnaroundTime = turnaround
	m.ResponseTime = response
	m.WaitingTime = turnaround - m.ExecutionTime
	if m.WaitingTime < 0 {
		m.WaitingTime = 0
	}
	s.TotalWaitingTime += m.WaitingTime
}

// SampleQueueDepths appends a snapshot of the four queue depths to the
// time-ordered sample log.
func (s *Stats) SampleQueueDepths(depths [NumQueues]int) {
	s.queueDepthSamples = append(s.queueDepthSamples, depths)
}

// RecordTick counts one elapsed simulation tick.
func (s *Stats) RecordTick() {
	s.TotalTicks++
}

// AvgTurnaroundTime returns the mean turnaround over terminated processes,
// or 0 if none have terminated.
func (s *Stats) AvgTurnaroundTime() float64 {
	if s.ProcessesTerminated == 0 {
		return 0
	}
	var total int64
	for _, m := range s.processMetrics {
		if m.TurnaroundTime > 0 {
			total += m.TurnaroundTime
		}
	}
	return float64(total) / float64(s.ProcessesTerminated)
}

// AvgResponseTime returns the mean response time over terminated processes,
// or 0 if none have terminated.
func (s *Stats) AvgResponseTime() float64 {
	if s.ProcessesTerminated == 0 {
		return 0
	}
	var total int64
	for _, m := range s.processMetrics {
		if m.ResponseTime > 0 {
			total += m.ResponseTime
		}
	}
	return float64(total) / float64(s.ProcessesTerminated)
}

// AvgWaitingTime returns the mean waiting time over terminated processes,
// or 0 if none have terminated.
func (s *Stats) AvgWaitingTime() float64 {
	if s.ProcessesTerminated == 0 {
		return 0
	}
	return float64(s.TotalWaitingTime) / float64(s.ProcessesTerminated)
}

// CPUUtilization returns total execution time over total ticks as a
// percentage, or 0 before any tick.
func (s *Stats) CPUUtilization() float64 {
	if s.TotalTicks == 0 {
		return 0
	}
	return float64(s.TotalExecutionTime) / float64(s.TotalTicks) * 100
}

// ContextSwitchRate returns context switches per tick, or 0 before any tick.
func (s *Stats) ContextSwitchRate() float64 {
	if s.TotalTicks == 0 {
		return 0
	}
	return float64(s.TotalContextSwitches) / float64(s.TotalTicks)
}

// AvgQueueDepth returns the mean recorded depth of the given queue, or 0
// with no samples or an out-of-range index.
func (s *Stats) AvgQueueDepth(queue int) float64 {
	if queue < 0 || queue >= NumQueues || len(s.queueDepthSamples) == 0 {
		return 0
	}
	total := 0
	for _, sample := range s.queueDepthSamples {
		total += sample[queue]
	}
	return float64(total) / float64(len(s.queueDepthSamples))
}

// ProcessMetricsFor returns a copy of the PID's metrics record.
func (s *Stats) ProcessMetricsFor(pid int) (ProcessMetrics, bool) {
	m, ok := s.processMetrics[pid]
	if !ok {
		return ProcessMetrics{}, false
	}
	return *m, true
}

// SampleCount returns the number of queue depth samples recorded.
func (s *Stats) SampleCount() int {
	return len(s.queueDepthSamples)
}

// SummaryReport renders the collected statistics as a human-readable block.
// Per-process rows are ordered by PID for stable output.
func (s *Stats) SummaryReport() string {
	var b strings.Builder

	b.WriteString("=== Scheduler Metrics and Statistics ===\n\n")

	b.WriteString("System Overview:\n")
	fmt.Fprintf(&b, "Total Ticks:              %d\n", s.TotalTicks)
	fmt.Fprintf(&b, "Processes Created:        %d\n", s.ProcessesCreated)
	fmt.Fprintf(&b, "Processes Terminated:     %d\n", s.ProcessesTerminated)
	fmt.Fprintf(&b, "Total Context Switches:   %d\n\n", s.TotalContextSwitches)

	b.WriteString("Performance Metrics:\n")
	fmt.Fprintf(&b, "CPU Utilization:          %.2f%%\n", s.CPUUtilization())
	fmt.Fprintf(&b, "Context Switch Rate:      %.4f per tick\n", s.ContextSwitchRate())
	fmt.Fprintf(&b, "Total Execution Time:     %dms\n", s.TotalExecutionTime)
	fmt.Fprintf(&b, "Total Waiting Time:       %dms\n\n", s.TotalWaitingTime)

	b.WriteString("Average Metrics (Terminated Processes):\n")
	fmt.Fprintf(&b, "Avg Turnaround Time:      %.2fms\n", s.AvgTurnaroundTime())
	fmt.Fprintf(&b, "Avg Response Time:        %.2fms\n", s.AvgResponseTime())
	fmt.Fprintf(&b, "Avg Waiting Time:         %.2fms\n\n", s.AvgWaitingTime())

	b.WriteString("Queue Depth Analysis:\n")
	for q := 0; q < NumQueues; q++ {
		fmt.Fprintf(&b, "Avg Q%d Depth:             %.2f\n", q, s.AvgQueueDepth(q))
	}
	b.WriteString("\n")

	if len(s.processMetrics) > 0 {
		b.WriteString("Per-Process Metrics:\n")
		b.WriteString("PID  Turnaround  Response  Waiting  Execution  Ctx-Sw  Q-Changes\n")

		pids := make([]int, 0, len(s.processMetrics))
		for pid := range s.processMetrics {
			pids = append(pids, pid)
		}
		sort.Ints(pids)
		for _, pid := range pids {
			m := s.processMetrics[pid]
			fmt.Fprintf(&b, "%-4d %-11s %-9s %-8s %-10s %-7d %-10d\n",
				m.PID,
				fmt.Sprintf("%dms", m.TurnaroundTime),
				fmt.Sprintf("%dms", m.ResponseTime),
				fmt.Sprintf("%dms", m.WaitingTime),
				fmt.Sprintf("%dms", m.ExecutionTime),
				m.ContextSwitches,
				m.QueueChanges,
			)
		}
	}

	b.WriteString("\n")
	return b.String()
}

// Reset clears all counters, the per-process table, and the sample series,
// starting a fresh measurement window.
func (s *Stats) Reset() {
	s.processMetrics = make(map[int]*ProcessMetrics)
	s.TotalContextSwitches = 0
	s.TotalTicks = 0
	s.ProcessesCreated = 0
	s.ProcessesTerminated = 0
	s.TotalExecutionTime = 0
	s.TotalWaitingTime = 0
	s.queueDepthSamples = nil
	s.startTime = time.Now()
}
