// sim/simulator.go
package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/schedsim/schedsim/sim/workload"
)

// InitPID is the PID of the init process Boot creates. It cannot be killed.
const InitPID = 1

// CycleResult describes what happened in one scheduling cycle.
type CycleResult struct {
	PID     int   // dispatched process
	Quantum int64 // quantum granted (ms)
	Used    int64 // time actually consumed (ms)
	Queue   int   // queue the process sits in after the feedback move
	Demoted bool  // true if it used the full quantum and was demoted
}

// Kernel wires the process manager, the MLFQ scheduler, and the statistics
// engine together and drives them one scheduling cycle at a time. The three
// components never touch each other directly; all cross-component flow runs
// through the kernel.
//
// Everything is synchronous and single-threaded: a caller issues one
// operation at a time and each completes immediately.
type Kernel struct {
	Manager   *ProcessManager
	Scheduler *MLFQScheduler
	Stats     *Stats
	Programs  *workload.Registry

	programOf  map[int]string
	rng        *rand.Rand
	cycleCount int64
}

// NewKernel builds a kernel from the given configuration and program catalog.
// A nil config means defaults; a nil registry means the built-in catalog.
func NewKernel(cfg *SimConfig, programs *workload.Registry) *Kernel {
	if cfg == nil {
		cfg = DefaultSimConfig()
	}
	if programs == nil {
		programs = workload.NewRegistry()
	}
	rngs := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	return &Kernel{
		Manager:   NewProcessManager(),
		Scheduler: NewMLFQSchedulerWith(cfg.QuantaArray(), cfg.BoostInterval),
		Stats:     NewStats(),
		Programs:  programs,
		programOf: make(map[int]string),
		rng:       rngs.ForSubsystem(SubsystemPrograms),
	}
}

// Boot creates the init process (PID 1, parent 0), admits it to the
// scheduler, and enrolls it in the statistics engine.
func (k *Kernel) Boot() int {
	pid := k.Manager.Create(0)
	k.Scheduler.Add(pid)
	k.Stats.RecordCreated(pid)
	logrus.Infof("kernel: init process created (PID %d)", pid)
	return pid
}

// Fork creates a child of ppid, admits it at the lowest priority queue, and
// enrolls it in the statistics engine.
func (k *Kernel) Fork(ppid int) (int, error) {
	if _, ok := k.Manager.Get(ppid); !ok && ppid != InitPID {
		return 0, fmt.Errorf("parent process %d does not exist", ppid)
	}
	pid := k.Manager.Create(ppid)
	k.Scheduler.Add(pid)
	k.Stats.RecordCreated(pid)
	logrus.Infof("kernel: process %d forked from %d", pid, ppid)
	return pid, nil
}

// Exec forks a child of ppid running the named catalog program. The process
// is admitted directly at the program's expected priority queue and its
// priority hint is set to match.
func (k *Kernel) Exec(ppid int, program string) (int, error) {
	prog, ok := k.Programs.Get(program)
	if !ok {
		return 0, fmt.Errorf("unknown program %q", program)
	}
	pid, err := k.Fork(ppid)
	if err != nil {
		return 0, err
	}
	k.programOf[pid] = prog.Name
	if p, ok := k.Manager.Get(pid); ok {
		p.Priority = prog.ExpectedPriority
	}
	k.Scheduler.AddToQueue(pid, prog.ExpectedPriority)
	logrus.Infof("kernel: process %d executing %q (Q%d)", pid, prog.Name, prog.ExpectedPriority)
	return pid, nil
}

// ProgramOf returns the catalog program assigned to a PID, if any.
func (k *Kernel) ProgramOf(pid int) (string, bool) {
	name, ok := k.programOf[pid]
	return name, ok
}

// Block moves a process to the Blocked state, e.g. waiting for simulated I/O.
func (k *Kernel) Block(pid int) error {
	p, ok := k.Manager.Get(pid)
	if !ok {
		return fmt.Errorf("process %d not found", pid)
	}
	if p.Terminated() {
		return fmt.Errorf("cannot block terminated process %d", pid)
	}
	p.SetState(StateBlocked)
	return nil
}

// Unblock returns a Blocked process to Ready and promotes it in the
// scheduler, the early-yield reward for giving up the CPU.
func (k *Kernel) Unblock(pid int) error {
	p, ok := k.Manager.Get(pid)
	if !ok {
		return fmt.Errorf("process %d not found", pid)
	}
	if p.State != StateBlocked {
		return fmt.Errorf("process %d is not blocked", pid)
	}
	p.SetState(StateReady)
	before, _ := k.Scheduler.GetQueue(pid)
	k.Scheduler.YieldedEarly(pid)
	if after, ok := k.Scheduler.GetQueue(pid); ok && after != before {
		k.Stats.RecordQueueChange(pid)
	}
	return nil
}

// Kill terminates a process: it is retired from the scheduler, marked
// Terminated in the manager (the PCB is retained), and its final metrics are
// recorded. The init process is protected.
func (k *Kernel) Kill(pid int) error {
	if pid == InitPID {
		return fmt.Errorf("cannot kill init process (PID %d)", InitPID)
	}
	p, ok := k.Manager.Get(pid)
	if !ok {
		return fmt.Errorf("process %d not found", pid)
	}
	k.Manager.Terminate(pid)
	k.Scheduler.Remove(pid)
	response, _ := p.ResponseTime()
	k.Stats.RecordTerminated(pid, p.TurnaroundTime(), response)
	logrus.Infof("kernel: process %d terminated", pid)
	return nil
}

// ScheduleCycle runs one scheduling cycle: dispatch the next process, let it
// consume all or part of its quantum, apply the MLFQ feedback move, and
// record the cycle in the statistics engine. ok is false when no process was
// runnable (the idle condition, still counted as a tick).
func (k *Kernel) ScheduleCycle() (CycleResult, bool) {
	k.cycleCount++
	pid, quantum, ok := k.Scheduler.NextProcess()
	k.Stats.RecordTick()
	if !ok {
		k.Stats.SampleQueueDepths(k.Scheduler.QueueLengths())
		logrus.Debugf("kernel: cycle %d idle, no runnable process", k.cycleCount)
		return CycleResult{}, false
	}

	p, found := k.Manager.Get(pid)
	if !found {
		// Scheduler tracked a PID the manager never saw; retire it.
		k.Scheduler.Remove(pid)
		k.Stats.SampleQueueDepths(k.Scheduler.QueueLengths())
		logrus.Warnf("kernel: dispatched unknown pid %d, retired", pid)
		return CycleResult{}, false
	}

	k.Manager.SetRunning(pid)
	k.Stats.RecordContextSwitch(pid)
	p.TimeAllocated = quantum
	p.ResetQuantum()

	usedFull := k.usesFullQuantum(pid)
	used := quantum
	if !usedFull {
		// Early yield: consume half the quantum, at least 1ms.
		used = quantum / 2
		if used == 0 {
			used = 1
		}
	}
	k.Scheduler.Tick(used)
	p.TimeUsed = used
	p.TotalTime += used
	k.Stats.RecordExecutionTime(pid, used)

	before, _ := k.Scheduler.GetQueue(pid)
	if usedFull {
		k.Scheduler.UsedFullQuantum(pid)
	} else {
		k.Scheduler.YieldedEarly(pid)
	}
	after, _ := k.Scheduler.GetQueue(pid)
	if after != before {
		k.Stats.RecordQueueChange(pid)
	}

	p.SetState(StateReady)
	k.Manager.ClearRunning()
	k.Stats.SampleQueueDepths(k.Scheduler.QueueLengths())

	logrus.Infof("kernel: cycle %d pid %d ran %d/%dms, %s to Q%d",
		k.cycleCount, pid, used, quantum, moveWord(usedFull), after)

	return CycleResult{PID: pid, Quantum: quantum, Used: used, Queue: after, Demoted: usedFull}, true
}

// usesFullQuantum decides this dispatch's behavior: program-driven draw when
// the process has a catalog program, alternating cycles otherwise.
func (k *Kernel) usesFullQuantum(pid int) bool {
	if name, ok := k.programOf[pid]; ok {
		if prog, ok := k.Programs.Get(name); ok {
			return prog.UsesFullQuantum(k.rng)
		}
	}
	return k.cycleCount%2 == 0
}

func moveWord(demoted bool) string {
	if demoted {
		return "demoted"
	}
	return "promoted"
}

// RunCycles runs n scheduling cycles and returns the results of the
// non-idle ones.
func (k *Kernel) RunCycles(n int) []CycleResult {
	results := make([]CycleResult, 0, n)
	for i := 0; i < n; i++ {
		if res, ok := k.ScheduleCycle(); ok {
			results = append(results, res)
		}
	}
	return results
}
