package sim

import "sort"

// ProcessManager owns the authoritative table of every process ever created.
// Terminated processes stay in the table so their turnaround and response
// statistics remain queryable after the fact.
//
// The manager tracks its own notion of the currently running process,
// independent of the scheduler's last-dispatched process. The duplication is
// deliberate: the manager answers "who does the OS say is running", the
// scheduler answers "who was last dispatched".
//
// Not safe for concurrent use; callers exposing it to multiple goroutines
// must serialize access.
type ProcessManager struct {
	processes  map[int]*Process
	nextPID    int
	runningPID int // 0 = none
}

// NewProcessManager returns an empty manager. PIDs are assigned from 1 and
// never reused.
func NewProcessManager() *ProcessManager {
	return &ProcessManager{
		processes: make(map[int]*Process),
		nextPID:   1,
	}
}

// Create allocates the next PID, inserts a Ready process with default
// placeholder context, and returns its PID. Never fails.
func (m *ProcessManager) Create(ppid int) int {
	pid := m.nextPID
	m.nextPID++
	m.processes[pid] = NewProcess(pid, ppid)
	return pid
}

// Get looks up a process by PID. The returned pointer is the live PCB;
// mutations through it are visible to all callers.
func (m *ProcessManager) Get(pid int) (*Process, bool) {
	p, ok := m.processes[pid]
	return p, ok
}

// Terminate transitions the process to Terminated, stamping its termination
// time, and reports whether the PID was known. The PCB is retained.
func (m *ProcessManager) Terminate(pid int) bool {
	p, ok := m.processes[pid]
	if !ok {
		return false
	}
	p.SetState(StateTerminated)
	if m.runningPID == pid {
		m.runningPID = 0
	}
	return true
}

// All returns every process ever created, ordered by PID.
func (m *ProcessManager) All() []*Process {
	out := make([]*Process, 0, len(m.processes))
	for _, p := range m.processes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// Active returns all non-terminated processes, ordered by PID.
func (m *ProcessManager) Active() []*Process {
	out := make([]*Process, 0, len(m.processes))
	for _, p := range m.processes {
		if p.State != StateTerminated {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// SetRunning marks the given process as the currently running one and moves
// it to the Running state. Unknown PIDs leave the current selection untouched.
func (m *ProcessManager) SetRunning(pid int) {
	p, ok := m.processes[pid]
	if !ok {
		return
	}
	m.runningPID = pid
	p.SetState(StateRunning)
}

// GetRunning returns the currently running process, if any.
func (m *ProcessManager) GetRunning() (*Process, bool) {
	if m.runningPID == 0 {
		return nil, false
	}
	return m.Get(m.runningPID)
}

// ClearRunning forgets the currently running process without touching its state.
func (m *ProcessManager) ClearRunning() {
	m.runningPID = 0
}

// Count returns the number of processes ever created and still tabled.
func (m *ProcessManager) Count() int {
	return len(m.processes)
}
