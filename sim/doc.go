// Package sim provides the core of the teaching OS scheduler simulator.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - process.go / manager.go: the PCB model and the authoritative process table
//   - scheduler.go: the MLFQ scheduler (queues, quanta, feedback moves, boost)
//   - metrics.go: the observational statistics engine
//
// simulator.go wires the three together one scheduling cycle at a time; it is
// the only place cross-component flow happens.
//
// # Architecture
//
// The scheduler operates on opaque integer PIDs and holds no reference into
// the process table; the statistics engine is event-driven and never mutates
// scheduler or process state. The mock program catalog lives in the
// sim/workload subpackage and only influences the per-dispatch full-quantum
// versus early-yield draw.
//
// The simulation is single-threaded and advances in discrete logical ticks.
// None of the components are safe for concurrent use; a caller exposing them
// to multiple goroutines must serialize access per component.
package sim
