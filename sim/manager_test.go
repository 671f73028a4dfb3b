package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessManager_CreateAssignsMonotonicPIDs(t *testing.T) {
	m := NewProcessManager()

	pid1 := m.Create(0)
	pid2 := m.Create(0)
	pid3 := m.Create(pid1)

	assert.Equal(t, 1, pid1)
	assert.Equal(t, 2, pid2)
	assert.Equal(t, 3, pid3)
	assert.Equal(t, 3, m.Count())
}

func TestProcessManager_GetMissing(t *testing.T) {
	m := NewProcessManager()

	_, ok := m.Get(42)

	assert.False(t, ok)
}

func TestProcessManager_TerminateRetainsProcess(t *testing.T) {
	// GIVEN a manager with one process
	m := NewProcessManager()
	pid := m.Create(0)

	// WHEN it is terminated
	ok := m.Terminate(pid)

	// THEN the call succeeds and the PCB stays in the table for post-mortem
	// inspection
	if !ok {
		t.Fatal("Terminate on known pid returned false")
	}
	p, found := m.Get(pid)
	if !found {
		t.Fatal("terminated process removed from table")
	}
	if p.State != StateTerminated {
		t.Errorf("state after Terminate: got %s, want Terminated", p.State)
	}
	if p.TerminationTime.IsZero() {
		t.Error("termination time not stamped")
	}
	if m.Count() != 1 {
		t.Errorf("count after Terminate: got %d, want 1", m.Count())
	}
}

func TestProcessManager_TerminateUnknownPID(t *testing.T) {
	m := NewProcessManager()

	assert.False(t, m.Terminate(99))
}

func TestProcessManager_PIDsNeverReused(t *testing.T) {
	// GIVEN a manager where a process has terminated
	m := NewProcessManager()
	pid1 := m.Create(0)
	m.Terminate(pid1)

	// WHEN another process is created
	pid2 := m.Create(0)

	// THEN the old PID is not handed out again
	if pid2 == pid1 {
		t.Errorf("pid %d reused after termination", pid1)
	}
	if pid2 != 2 {
		t.Errorf("next pid: got %d, want 2", pid2)
	}
}

func TestProcessManager_ActiveFiltersTerminated(t *testing.T) {
	// GIVEN three processes, one terminated
	m := NewProcessManager()
	m.Create(0)
	pid2 := m.Create(0)
	m.Create(0)
	m.Terminate(pid2)

	// WHEN the views are queried
	all := m.All()
	active := m.Active()

	// THEN All keeps everything, Active drops the terminated one, both in
	// PID order
	if len(all) != 3 {
		t.Errorf("All: got %d processes, want 3", len(all))
	}
	if len(active) != 2 {
		t.Fatalf("Active: got %d processes, want 2", len(active))
	}
	if active[0].PID != 1 || active[1].PID != 3 {
		t.Errorf("Active order: got [%d %d], want [1 3]", active[0].PID, active[1].PID)
	}
}

func TestProcessManager_RunningTracking(t *testing.T) {
	m := NewProcessManager()
	pid := m.Create(0)

	m.SetRunning(pid)

	running, ok := m.GetRunning()
	assert.True(t, ok)
	assert.Equal(t, pid, running.PID)
	assert.Equal(t, StateRunning, running.State)

	m.ClearRunning()
	_, ok = m.GetRunning()
	assert.False(t, ok)
}

func TestProcessManager_SetRunningUnknownPIDIgnored(t *testing.T) {
	m := NewProcessManager()

	m.SetRunning(7)

	_, ok := m.GetRunning()
	assert.False(t, ok)
}

func TestProcessManager_TerminateClearsRunning(t *testing.T) {
	m := NewProcessManager()
	pid := m.Create(0)
	m.SetRunning(pid)

	m.Terminate(pid)

	_, ok := m.GetRunning()
	assert.False(t, ok)
}
