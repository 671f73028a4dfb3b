package sim

import "github.com/sirupsen/logrus"

// NumQueues is the number of MLFQ priority levels. Queue 0 is the highest
// priority, queue NumQueues-1 the lowest.
const NumQueues = 4

// DefaultBoostInterval is the tick period of the anti-starvation boost.
const DefaultBoostInterval = 100

// DefaultQuanta returns the per-queue time quanta in milliseconds. Higher
// priority queues get shorter quanta for responsiveness; lower queues
// amortize switching overhead for CPU-bound work.
func DefaultQuanta() [NumQueues]int64 {
	return [NumQueues]int64{8, 16, 32, 64}
}

// MLFQScheduler is a Multi-Level Feedback Queue scheduler over opaque
// process identifiers. It holds no reference into the process table, so it
// can schedule any workload abstraction that hands it integer IDs.
//
// Internally it keeps NumQueues FIFO queues of PIDs plus a reverse index
// mapping each tracked PID to its queue. A PID appears in at most one queue.
// Every boostInterval ticks all PIDs below queue 0 are merged back into
// queue 0, which bounds starvation at one boost cycle.
//
// Not safe for concurrent use.
type MLFQScheduler struct {
	queues  [NumQueues][]int
	quanta  [NumQueues]int64
	queueOf map[int]int // reverse index: pid -> queue

	boostInterval int64
	ticks         int64

	currentPID    int
	hasCurrent    bool
	timeRemaining int64
}

// NewMLFQScheduler returns a scheduler with the default quanta and boost
// interval.
func NewMLFQScheduler() *MLFQScheduler {
	return NewMLFQSchedulerWith(DefaultQuanta(), DefaultBoostInterval)
}

// NewMLFQSchedulerWith returns a scheduler with explicit per-queue quanta and
// boost interval. A non-positive boost interval falls back to the default.
func NewMLFQSchedulerWith(quanta [NumQueues]int64, boostInterval int64) *MLFQScheduler {
	if boostInterval <= 0 {
		boostInterval = DefaultBoostInterval
	}
	return &MLFQScheduler{
		quanta:        quanta,
		queueOf:       make(map[int]int),
		boostInterval: boostInterval,
	}
}

// Add admits a PID at the lowest priority queue. New work is assumed
// non-privileged until proven otherwise.
func (s *MLFQScheduler) Add(pid int) {
	s.AddToQueue(pid, NumQueues-1)
}

// AddToQueue admits a PID directly into the given queue (mainly for system
// processes). Out-of-range queue indices are a no-op. A PID that is already
// tracked is detached from its current queue first, never duplicated.
func (s *MLFQScheduler) AddToQueue(pid, queue int) {
	if queue < 0 || queue >= NumQueues {
		logrus.Warnf("scheduler: queue %d out of range, ignoring add of pid %d", queue, pid)
		return
	}
	s.detach(pid)
	s.queues[queue] = append(s.queues[queue], pid)
	s.queueOf[pid] = queue
}

// Remove retires a PID from the scheduler, dropping its reverse-index entry
// and its queue membership. Safe to call on an untracked PID.
func (s *MLFQScheduler) Remove(pid int) {
	s.detach(pid)
	delete(s.queueOf, pid)
	if s.hasCurrent && s.currentPID == pid {
		s.hasCurrent = false
		s.currentPID = 0
		s.timeRemaining = 0
	}
}

// detach removes pid from whichever queue currently holds it, leaving the
// reverse index untouched. A dispatched PID is tracked but in no queue, so a
// miss here is normal.
func (s *MLFQScheduler) detach(pid int) {
	q, ok := s.queueOf[pid]
	if !ok {
		return
	}
	for i, p := range s.queues[q] {
		if p == pid {
			s.queues[q] = append(s.queues[q][:i], s.queues[q][i+1:]...)
			return
		}
	}
}

// moveToQueue re-homes a tracked PID at the tail of the target queue.
func (s *MLFQScheduler) moveToQueue(pid, queue int) {
	if queue < 0 || queue >= NumQueues {
		return
	}
	s.detach(pid)
	s.queues[queue] = append(s.queues[queue], pid)
	s.queueOf[pid] = queue
}

// boost implements the anti-starvation reset: every PID in queues 1..3 moves
// to the tail of queue 0. Queues drain in ascending order, so prior queue-1
// residents land ahead of queue-2 residents ahead of queue-3 residents, each
// group keeping its internal FIFO order.
func (s *MLFQScheduler) boost() {
	moved := 0
	for q := 1; q < NumQueues; q++ {
		for _, pid := range s.queues[q] {
			s.queues[0] = append(s.queues[0], pid)
			s.queueOf[pid] = 0
			moved++
		}
		s.queues[q] = s.queues[q][:0]
	}
	logrus.Debugf("scheduler: priority boost at tick %d, %d processes moved to Q0", s.ticks, moved)
}

// NextProcess advances the tick counter, runs the periodic boost when due,
// and dispatches the head of the highest-priority non-empty queue. It
// returns the dispatched PID and its queue's quantum. ok is false when all
// queues are empty, the idle condition.
func (s *MLFQScheduler) NextProcess() (pid int, quantum int64, ok bool) {
	s.ticks++
	if s.ticks%s.boostInterval == 0 {
		s.boost()
	}

	for q := 0; q < NumQueues; q++ {
		if len(s.queues[q]) == 0 {
			continue
		}
		pid = s.queues[q][0]
		s.queues[q] = s.queues[q][1:]
		s.currentPID = pid
		s.hasCurrent = true
		s.timeRemaining = s.quanta[q]
		logrus.Debugf("scheduler: dispatch pid %d from Q%d, quantum %dms", pid, q, s.quanta[q])
		return pid, s.quanta[q], true
	}

	s.hasCurrent = false
	s.currentPID = 0
	return 0, 0, false
}

// UsedFullQuantum demotes a PID that consumed its whole quantum to the next
// lower-priority queue, or re-enqueues it at the tail of the bottom queue if
// it is already there. Untracked PIDs are a no-op.
func (s *MLFQScheduler) UsedFullQuantum(pid int) {
	q, ok := s.queueOf[pid]
	if !ok {
		return
	}
	if q < NumQueues-1 {
		s.moveToQueue(pid, q+1)
	} else {
		s.moveToQueue(pid, NumQueues-1)
	}
}

// YieldedEarly promotes a PID that gave up the CPU before its quantum ran
// out to the next higher-priority queue, or re-enqueues it at the tail of
// queue 0 if it is already there. Untracked PIDs are a no-op.
func (s *MLFQScheduler) YieldedEarly(pid int) {
	q, ok := s.queueOf[pid]
	if !ok {
		return
	}
	if q > 0 {
		s.moveToQueue(pid, q-1)
	} else {
		s.moveToQueue(pid, 0)
	}
}

// Tick consumes elapsed milliseconds from the current quantum, floored at
// zero.
func (s *MLFQScheduler) Tick(elapsed int64) {
	s.timeRemaining -= elapsed
	if s.timeRemaining < 0 {
		s.timeRemaining = 0
	}
}

// IsQuantumExpired reports whether the current quantum has run out.
func (s *MLFQScheduler) IsQuantumExpired() bool {
	return s.timeRemaining == 0
}

// CurrentProcess returns the last dispatched PID, if any.
func (s *MLFQScheduler) CurrentProcess() (int, bool) {
	if !s.hasCurrent {
		return 0, false
	}
	return s.currentPID, true
}

// QueueLengths returns the current depth of each queue.
func (s *MLFQScheduler) QueueLengths() [NumQueues]int {
	var lengths [NumQueues]int
	for q := range s.queues {
		lengths[q] = len(s.queues[q])
	}
	return lengths
}

// GetQueue returns the queue a PID is tracked in. ok is false for untracked
// PIDs.
func (s *MLFQScheduler) GetQueue(pid int) (int, bool) {
	q, ok := s.queueOf[pid]
	return q, ok
}

// TimeRemaining returns the milliseconds left in the active quantum.
func (s *MLFQScheduler) TimeRemaining() int64 {
	return s.timeRemaining
}

// Quantum returns the quantum of the given queue, or 0 for out-of-range
// indices.
func (s *MLFQScheduler) Quantum(queue int) int64 {
	if queue < 0 || queue >= NumQueues {
		return 0
	}
	return s.quanta[queue]
}

// Tracked returns the number of PIDs the scheduler currently tracks.
func (s *MLFQScheduler) Tracked() int {
	return len(s.queueOf)
}

// Reset clears all queues, the reverse index, the current selection, and the
// tick counter back to their initial values.
func (s *MLFQScheduler) Reset() {
	for q := range s.queues {
		s.queues[q] = nil
	}
	s.queueOf = make(map[int]int)
	s.currentPID = 0
	s.hasCurrent = false
	s.timeRemaining = 0
	s.ticks = 0
}
