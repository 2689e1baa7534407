package autoalloc

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/roach88/autoalloc/internal/backend"
	"github.com/roach88/autoalloc/internal/hardware"
	"github.com/roach88/autoalloc/internal/platform"
	"github.com/roach88/autoalloc/internal/policy"
)

// EnvPin names the environment variable that force-binds a backend,
// bypassing the rule table. Accepted values are the AllocatorType wire
// names ("system", "high-performance-general", ...). The recommendation
// API keeps using the table, so a pin shows up as an optimality mismatch.
const EnvPin = "AUTOALLOC_ALLOCATOR"

// Process-wide bound state.
//
// LIFECYCLE: created on first access inside bindOnce, lives until process
// exit, never mutated after the Once completes. Reads after first
// completion are synchronization-free because the value is immutable.
//
// BOOTSTRAP CONSTRAINT: everything bindOnce touches - profile, snapshot,
// rule evaluation - works on plain value types and fixed-capacity sets, so
// the decision never routes through a container that would itself need the
// not-yet-decided allocator.
var (
	bindOnce  sync.Once
	boundInfo AllocatorInfo
)

// Bind resolves the profile, probes hardware, evaluates the rule table and
// freezes the result for the process lifetime. Call it as early as possible
// in startup; any introspection call triggers it implicitly.
//
// Binding is irreversible. Later policy evaluations produce
// recommendations, never a rebind.
func Bind() AllocatorInfo {
	return bound()
}

func bound() AllocatorInfo {
	bindOnce.Do(func() {
		profile := platform.Resolve()
		hw := hardware.Probe()
		dec := bindDecision(profile, hw)

		boundInfo = AllocatorInfo{
			AllocatorType: dec.Chosen,
			Reason:        dec.Reason,
			RuleID:        dec.RuleID,
			SystemInfo: SystemInfo{
				CPUCores:         hw.CPUCores,
				TotalMemoryBytes: hw.TotalMemoryBytes,
				OS:               hw.OS,
				Arch:             hw.Arch,
				IsWASM:           profile.IsWASM,
				IsDebug:          profile.IsDebug(),
				ProbeDegraded:    hw.Degraded,
			},
		}

		slog.Info("autoalloc: allocator bound",
			"allocator", dec.Chosen.String(),
			"rule", dec.RuleID,
			"reason", dec.Reason,
		)
	})
	return boundInfo
}

// bindDecision applies the override order: env pin beats the rule table.
// An unparseable pin value is reported and ignored - a typo must not leave
// the process without an allocator.
func bindDecision(p platform.Profile, hw hardware.Snapshot) policy.Decision {
	if v := os.Getenv(EnvPin); v != "" {
		t, err := backend.Parse(v)
		if err != nil {
			slog.Warn("autoalloc: ignoring invalid pin", "var", EnvPin, "value", v)
		} else {
			return policy.PinnedDecision(t, fmt.Sprintf("env %s", EnvPin), hw)
		}
	}
	return policy.New(policy.DefaultConfig()).Decide(p, hw)
}

// GetRecommendedAllocator re-evaluates the rule table under the default
// configuration against the frozen hardware snapshot. Hardware is not
// re-probed - the snapshot is authoritative for the process lifetime - but
// the evaluation itself is redone fresh, so it can diverge from the bound
// backend when the binding was pinned.
func GetRecommendedAllocator() (AllocatorType, string) {
	dec := policy.New(policy.DefaultConfig()).Decide(platform.Resolve(), hardware.Probe())
	return dec.Chosen, dec.Reason
}

// CheckAllocatorOptimization compares the bound backend against the fresh
// recommendation. Returns (true, "") when they agree; otherwise the
// suggestion names the recommended backend and its rationale.
func CheckAllocatorOptimization() (bool, string) {
	current := GetAllocatorType()
	recommended, reason := GetRecommendedAllocator()

	if current == recommended {
		return true, ""
	}
	return false, fmt.Sprintf("current: %s, recommended: %s (%s)", current, recommended, reason)
}
