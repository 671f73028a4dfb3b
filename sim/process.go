package sim

import "time"

// ProcessState represents the lifecycle state of a simulated process.
type ProcessState int

const (
	StateReady ProcessState = iota
	StateRunning
	StateBlocked
	StateTerminated
)

func (s ProcessState) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateBlocked:
		return "Blocked"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Registers holds the simulated CPU register file. The values are opaque
// placeholders; nothing in the scheduler reads them.
type Registers struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	RSP uint64
}

// DefaultRegisters returns the register file a freshly created process starts
// with. The stack pointer starts at a high address.
func DefaultRegisters() Registers {
	return Registers{RSP: 0x1000}
}

// MemoryContext holds the simulated memory layout of a process.
// Placeholder data only; there is no real memory subsystem behind it.
type MemoryContext struct {
	PageTableBase uint64
	HeapStart     uint64
	HeapSize      uint64
	StackStart    uint64
	StackSize     uint64
}

// DefaultMemoryContext returns the memory layout a new process starts with.
func DefaultMemoryContext() MemoryContext {
	return MemoryContext{
		HeapStart:  0x2000,
		HeapSize:   0x1000,
		StackStart: 0x10000,
		StackSize:  0x2000,
	}
}

// Process is the PCB (Process Control Block) for one simulated process.
// It carries identity, lifecycle state, placeholder execution context, and
// the time bookkeeping the scheduler and metrics layers consume.
//
// Times are in milliseconds. Quantum accounting (TimeAllocated/TimeUsed) is
// per-dispatch; TotalTime accumulates across the whole lifetime.
type Process struct {
	PID      int
	PPID     int
	State    ProcessState
	Priority int // 0-3 static hint, informational only

	ProgramCounter uint64
	Registers      Registers
	MemoryContext  MemoryContext

	TimeAllocated int64 // time allocated in the current quantum
	TimeUsed      int64 // time used in the current quantum
	TotalTime     int64 // total execution time across all quanta

	CreationTime    time.Time
	TerminationTime time.Time // zero until the process terminates
	QueueEntryTime  time.Time
}

// NewProcess constructs a Ready process with default placeholder context.
// New processes carry the lowest priority hint until proven otherwise.
func NewProcess(pid, ppid int) *Process {
	now := time.Now()
	return &Process{
		PID:            pid,
		PPID:           ppid,
		State:          StateReady,
		Priority:       3,
		Registers:      DefaultRegisters(),
		MemoryContext:  DefaultMemoryContext(),
		CreationTime:   now,
		QueueEntryTime: now,
	}
}

// SetState transitions the process to a new state. Entering Terminated stamps
// the termination time; a terminated process never changes state again.
func (p *Process) SetState(s ProcessState) {
	if p.State == StateTerminated {
		return
	}
	p.State = s
	if s == StateTerminated {
		p.TerminationTime = time.Now()
	}
}

// Terminated reports whether the process has terminated.
func (p *Process) Terminated() bool {
	return p.State == StateTerminated
}

// TurnaroundTime returns the elapsed milliseconds from creation to
// termination, or to now for a still-live process.
func (p *Process) TurnaroundTime() int64 {
	end := time.Now()
	if !p.TerminationTime.IsZero() {
		end = p.TerminationTime
	}
	d := end.UnixMilli() - p.CreationTime.UnixMilli()
	if d < 0 {
		return 0
	}
	return d
}

// ResponseTime returns the milliseconds from creation to queue entry, defined
// only once the process has accumulated execution time. The second return is
// false until then.
//
// QueueEntryTime is stamped at construction and never advanced, so the value
// is the queueing delay before any scheduling occurred. This matches the
// documented formula; callers wanting dispatch latency must measure it
// themselves.
func (p *Process) ResponseTime() (int64, bool) {
	if p.TotalTime <= 0 {
		return 0, false
	}
	d := p.QueueEntryTime.UnixMilli() - p.CreationTime.UnixMilli()
	if d < 0 {
		d = 0
	}
	return d, true
}

// WaitingTime returns turnaround minus total execution time, floored at zero.
func (p *Process) WaitingTime() int64 {
	w := p.TurnaroundTime() - p.TotalTime
	if w < 0 {
		return 0
	}
	return w
}

// QuantumExpired reports whether the process has used up its allocated quantum.
func (p *Process) QuantumExpired() bool {
	return p.TimeUsed >= p.TimeAllocated
}

// ResetQuantum clears the used-time counter for a fresh quantum.
func (p *Process) ResetQuantum() {
	p.TimeUsed = 0
}
