// Package hardware captures a one-time snapshot of the executing machine.
//
// The snapshot is probed lazily on first use and memoized for the process
// lifetime: the engine treats its first reading as authoritative even though
// the real hardware could in theory change underneath it (hotplug). This is
// a deliberate simplification - the allocator decision it feeds is itself
// frozen at bind time.
//
// Failure policy: a hardware query never aborts selection. Any query that
// fails substitutes a conservative default (1 core, 0 bytes) and marks the
// snapshot degraded; the degraded flag travels into the reason string so
// callers can tell "probed and decided" from "assumed and decided".
package hardware
