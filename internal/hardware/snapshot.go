package hardware

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Snapshot holds the runtime-probed facts the selection policy consults.
//
// INVARIANTS:
//   - CPUCores >= 1, even when probing fails.
//   - Value type, never mutated after assembly.
type Snapshot struct {
	CPUCores         int
	TotalMemoryBytes uint64
	OS               string
	Arch             string
	Degraded         bool
}

var (
	probeOnce sync.Once
	probed    Snapshot

	// probeRuns counts executions of the probe body. Read by in-package
	// tests asserting the exactly-once guarantee.
	probeRuns atomic.Int32
)

// Probe returns the process-wide hardware snapshot.
//
// The underlying queries execute exactly once per process, no matter how
// many goroutines race on the first call; everyone observes the identical
// completed value. Reads after the first completion are lock-free in effect:
// sync.Once publishes the value with an acquire/release edge and the value
// is immutable afterward.
func Probe() Snapshot {
	probeOnce.Do(func() {
		probeRuns.Add(1)
		mem, memErr := totalMemory()
		probed = assemble(runtime.NumCPU(), mem, memErr)
	})
	return probed
}

// assemble builds a snapshot from raw query results, applying the
// degradation policy. Pure; the degraded path is tested through here.
func assemble(cores int, mem uint64, memErr error) Snapshot {
	s := Snapshot{
		CPUCores:         cores,
		TotalMemoryBytes: mem,
		OS:               runtime.GOOS,
		Arch:             runtime.GOARCH,
	}
	if s.CPUCores < 1 {
		s.CPUCores = 1
		s.Degraded = true
	}
	if memErr != nil {
		s.TotalMemoryBytes = 0
		s.Degraded = true
	}
	return s
}
