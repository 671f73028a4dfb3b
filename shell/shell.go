// Package shell is the interactive command layer of the simulator: a thin
// text dispatcher that translates user strings into kernel operations and
// formats the results. It contains no scheduling logic of its own.
package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schedsim/schedsim/sim"
)

// CommandKind identifies a shell command.
type CommandKind int

const (
	CmdFork CommandKind = iota
	CmdPs
	CmdRun
	CmdRunProgram
	CmdBlock
	CmdUnblock
	CmdKill
	CmdInfo
	CmdQueues
	CmdPrograms
	CmdSchedule
	CmdStats
	CmdHelp
	CmdExit
)

// Command is one parsed shell command with its arguments.
type Command struct {
	Kind    CommandKind
	PID     int
	PPID    int
	Cycles  int
	Program string
}

// ParseCommand converts a user input line into a Command. ok is false for
// empty or unrecognized input.
func ParseCommand(input string) (Command, bool) {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return Command{}, false
	}

	intArg := func() (int, bool) {
		if len(parts) < 2 {
			return 0, false
		}
		n, err := strconv.Atoi(parts[1])
		return n, err == nil
	}

	switch parts[0] {
	case "fork":
		if ppid, ok := intArg(); ok {
			return Command{Kind: CmdFork, PPID: ppid}, true
		}
		if len(parts) == 1 {
			return Command{Kind: CmdFork, PPID: sim.InitPID}, true
		}
		return Command{}, false
	case "ps":
		return Command{Kind: CmdPs}, true
	case "run":
		if pid, ok := intArg(); ok {
			return Command{Kind: CmdRun, PID: pid}, true
		}
		return Command{}, false
	case "run_program":
		if len(parts) >= 2 {
			return Command{Kind: CmdRunProgram, Program: parts[1]}, true
		}
		return Command{}, false
	case "block":
		if pid, ok := intArg(); ok {
			return Command{Kind: CmdBlock, PID: pid}, true
		}
		return Command{}, false
	case "unblock":
		if pid, ok := intArg(); ok {
			return Command{Kind: CmdUnblock, PID: pid}, true
		}
		return Command{}, false
	case "kill":
		if pid, ok := intArg(); ok {
			return Command{Kind: CmdKill, PID: pid}, true
		}
		return Command{}, false
	case "info":
		if pid, ok := intArg(); ok {
			return Command{Kind: CmdInfo, PID: pid}, true
		}
		return Command{}, false
	case "queues":
		return Command{Kind: CmdQueues}, true
	case "programs":
		return Command{Kind: CmdPrograms}, true
	case "schedule":
		if cycles, ok := intArg(); ok {
			return Command{Kind: CmdSchedule, Cycles: cycles}, true
		}
		return Command{}, false
	case "stats":
		return Command{Kind: CmdStats}, true
	case "help":
		return Command{Kind: CmdHelp}, true
	case "exit", "quit":
		return Command{Kind: CmdExit}, true
	default:
		return Command{}, false
	}
}

// Shell dispatches parsed commands against a kernel and formats the results.
type Shell struct {
	kernel  *sim.Kernel
	running bool
}

// New creates a shell over the given kernel and boots the init process.
func New(kernel *sim.Kernel) *Shell {
	kernel.Boot()
	return &Shell{kernel: kernel, running: true}
}

// Execute dispatches one command and returns its formatted output.
func (s *Shell) Execute(cmd Command) string {
	switch cmd.Kind {
	case CmdFork:
		return s.cmdFork(cmd.PPID)
	case CmdPs:
		return s.cmdPs()
	case CmdRun:
		return s.cmdRun(cmd.PID)
	case CmdRunProgram:
		return s.cmdRunProgram(cmd.Program)
	case CmdBlock:
		return s.cmdBlock(cmd.PID)
	case CmdUnblock:
		return s.cmdUnblock(cmd.PID)
	case CmdKill:
		return s.cmdKill(cmd.PID)
	case CmdInfo:
		return s.cmdInfo(cmd.PID)
	case CmdQueues:
		return s.cmdQueues()
	case CmdPrograms:
		return s.kernel.Programs.Catalog()
	case CmdSchedule:
		return s.cmdSchedule(cmd.Cycles)
	case CmdStats:
		return s.kernel.Stats.SummaryReport()
	case CmdHelp:
		return s.cmdHelp()
	case CmdExit:
		s.running = false
		return "Exiting OS simulator..."
	default:
		return "Error: unknown command"
	}
}

func (s *Shell) cmdFork(ppid int) string {
	pid, err := s.kernel.Fork(ppid)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("✓ Process created: PID %d (parent: %d)", pid, ppid)
}

func (s *Shell) cmdPs() string {
	var b strings.Builder
	b.WriteString("PID  PPID STATE       PRIORITY QUEUE  PROGRAM       TOTAL_TIME\n")

	for _, p := range s.kernel.Manager.All() {
		queue := "N/A"
		if q, ok := s.kernel.Scheduler.GetQueue(p.PID); ok {
			queue = fmt.Sprintf("Q%d", q)
		}
		program := "-"
		if name, ok := s.kernel.ProgramOf(p.PID); ok {
			program = name
		}
		fmt.Fprintf(&b, "%-4d %-4d %-11s %-8d %-6s %-13s %dms\n",
			p.PID, p.PPID, p.State, p.Priority, queue, program, p.TotalTime)
	}
	return b.String()
}

func (s *Shell) cmdRun(pid int) string {
	p, ok := s.kernel.Manager.Get(pid)
	if !ok {
		return fmt.Sprintf("Error: Process %d not found", pid)
	}
	if p.Terminated() {
		return fmt.Sprintf("Error: Cannot run terminated process %d", pid)
	}
	s.kernel.Manager.SetRunning(pid)
	return fmt.Sprintf("✓ Process %d is now running", pid)
}

func (s *Shell) cmdRunProgram(name string) string {
	pid, err := s.kernel.Exec(sim.InitPID, name)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	q, _ := s.kernel.Scheduler.GetQueue(pid)
	return fmt.Sprintf("✓ Program %q started as PID %d (admitted to Q%d)", name, pid, q)
}

func (s *Shell) cmdBlock(pid int) string {
	if err := s.kernel.Block(pid); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("✓ Process %d blocked (waiting for I/O)", pid)
}

func (s *Shell) cmdUnblock(pid int) string {
	if err := s.kernel.Unblock(pid); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("✓ Process %d unblocked (promoted in scheduler)", pid)
}

func (s *Shell) cmdKill(pid int) string {
	if err := s.kernel.Kill(pid); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("✓ Process %d terminated", pid)
}

func (s *Shell) cmdInfo(pid int) string {
	p, ok := s.kernel.Manager.Get(pid)
	if !ok {
		return fmt.Sprintf("Error: Process %d not found", pid)
	}

	queue := "N/A"
	if q, ok := s.kernel.Scheduler.GetQueue(pid); ok {
		queue = fmt.Sprintf("Q%d", q)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Process Information (PID: %d)\n", p.PID)
	fmt.Fprintf(&b, "Parent PID (PPID):    %d\n", p.PPID)
	fmt.Fprintf(&b, "State:                %s\n", p.State)
	fmt.Fprintf(&b, "Priority:             %d\n", p.Priority)
	fmt.Fprintf(&b, "Scheduler Queue:      %s\n", queue)
	fmt.Fprintf(&b, "Program Counter:      0x%x\n", p.ProgramCounter)
	fmt.Fprintf(&b, "Total Execution Time: %dms\n", p.TotalTime)
	fmt.Fprintf(&b, "Turnaround Time:      %dms\n", p.TurnaroundTime())
	fmt.Fprintf(&b, "Waiting Time:         %dms\n", p.WaitingTime())
	fmt.Fprintf(&b, "Stack Pointer:        0x%x\n", p.Registers.RSP)
	fmt.Fprintf(&b, "Heap Start:           0x%x\n", p.MemoryContext.HeapStart)
	return b.String()
}

func (s *Shell) cmdQueues() string {
	lengths := s.kernel.Scheduler.QueueLengths()

	var b strings.Builder
	b.WriteString("MLFQ Scheduler Queue State\n")
	for q := 0; q < sim.NumQueues; q++ {
		fmt.Fprintf(&b, "Q%d (%dms):  %d processes\n", q, s.kernel.Scheduler.Quantum(q), lengths[q])
	}

	current := "None"
	if pid, ok := s.kernel.Scheduler.CurrentProcess(); ok {
		current = strconv.Itoa(pid)
	}
	fmt.Fprintf(&b, "Currently Running: %s\n", current)
	fmt.Fprintf(&b, "Time Remaining:   %dms\n", s.kernel.Scheduler.TimeRemaining())
	return b.String()
}

func (s *Shell) cmdSchedule(cycles int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulating %d scheduling cycles:\n\n", cycles)

	for cycle := 1; cycle <= cycles; cycle++ {
		res, ok := s.kernel.ScheduleCycle()
		if !ok {
			fmt.Fprintf(&b, "Cycle %d: idle (no runnable process)\n", cycle)
			continue
		}
		fmt.Fprintf(&b, "Cycle %d: PID %d ran for %dms of %dms\n", cycle, res.PID, res.Used, res.Quantum)
		if res.Demoted {
			fmt.Fprintf(&b, "         → Demoted to Q%d\n", res.Queue)
		} else {
			fmt.Fprintf(&b, "         → Promoted to Q%d\n", res.Queue)
		}
	}
	return b.String()
}

func (s *Shell) cmdHelp() string {
	return `Available Commands:
fork [ppid]            - Create new process (child of ppid)
ps                     - List all processes
run <pid>              - Transition process to running state
run_program <name>     - Start a catalog program as a new process
block <pid>            - Block process (waiting for I/O)
unblock <pid>          - Unblock process
kill <pid>             - Terminate process
info <pid>             - Show detailed process information
queues                 - Show scheduler queue state
programs               - Show the mock program catalog
schedule <cycles>      - Simulate N scheduling cycles
stats                  - Show scheduler metrics and statistics
help                   - Show this help message
exit                   - Exit simulator
`
}

// IsRunning reports whether the shell should keep reading commands.
func (s *Shell) IsRunning() bool {
	return s.running
}

// ProcessCount returns the number of processes in the kernel's table.
func (s *Shell) ProcessCount() int {
	return s.kernel.Manager.Count()
}
