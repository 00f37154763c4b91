// Package agent implements the Ascend agents: the shared BaseAgent request
// executor plus the Planner, Notewriter, Advisor and Coordinator built on
// top of it.
//
// BaseAgent owns the one contract with real depth in the system: a single
// logical backend request bounded by a per-attempt timeout and a fixed-count,
// fixed-delay retry loop, whose outcome is always a core.Response envelope.
// The specialized agents are flat dispatch tables over their task types;
// each handler validates its own required fields, formats a prompt, runs it
// through the executor and records the outcome to the history store.
//
// Agent-local collections (schedules, materials, advising sessions) are
// mutated only by their owning agent instance. Concurrent calls for the same
// student from multiple goroutines are out of contract; callers serialize
// per-student access externally if they need it.
package agent
