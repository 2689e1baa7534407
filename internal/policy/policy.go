package policy

import (
	"fmt"

	"github.com/roach88/autoalloc/internal/backend"
	"github.com/roach88/autoalloc/internal/hardware"
	"github.com/roach88/autoalloc/internal/platform"
)

// Rule identifiers, embedded in every reason string and audit record.
const (
	RuleNoHeapOS       = "no-heap-os"
	RuleDebugBuild     = "debug-build"
	RuleWASM           = "wasm"
	RuleMobile         = "mobile"
	RulePlatformNative = "platform-native"
	RuleDesktop        = "desktop-throughput"

	// RulePinned marks a decision forced by an override (env var or config
	// pin) rather than produced by the table. Decide never emits it; only
	// the binding layer does.
	RulePinned = "pinned"
)

// Decision is the outcome of one rule-table evaluation.
type Decision struct {
	Chosen backend.Type
	Reason string
	RuleID string
}

// Policy is an immutable, ordered rule table.
//
// INVARIANTS:
//   - rules order never changes after New (first match wins).
//   - Decide has no side effects and touches no global state.
type Policy struct {
	cfg   Config
	rules []rule
}

// rule evaluates one table entry. ok=false means "no match, fall through".
type rule struct {
	id    string
	match func(p platform.Profile, hw hardware.Snapshot) (backend.Type, string, bool)
}

// New constructs the rule table for the given configuration.
// A zero CoreThreshold falls back to DefaultCoreThreshold.
func New(cfg Config) *Policy {
	if cfg.CoreThreshold < 1 {
		cfg.CoreThreshold = DefaultCoreThreshold
	}
	if cfg.MobileRule == "" {
		cfg.MobileRule = MobileSecureNative
	}

	pol := &Policy{cfg: cfg}
	pol.rules = []rule{
		{RuleNoHeapOS, pol.matchNoHeapOS},
		{RuleDebugBuild, pol.matchDebugBuild},
		{RuleWASM, pol.matchWASM},
		{RuleMobile, pol.matchMobile},
		{RulePlatformNative, pol.matchPlatformNative},
		{RuleDesktop, pol.matchDesktop}, // always matches; totality anchor
	}
	return pol
}

// Decide evaluates the table and returns exactly one decision.
//
// Total and deterministic: every (profile, snapshot) pair reaches the final
// desktop rule if nothing earlier matches, and identical inputs produce a
// byte-identical Decision.
func (pol *Policy) Decide(p platform.Profile, hw hardware.Snapshot) Decision {
	for _, r := range pol.rules {
		if chosen, text, ok := r.match(p, hw); ok {
			return Decision{
				Chosen: chosen,
				Reason: text,
				RuleID: r.id,
			}
		}
	}
	// Unreachable: matchDesktop always matches. Kept as a hard failure
	// rather than a silent default so a broken table edit cannot ship.
	panic("policy: rule table did not match")
}

// Config returns the configuration the table was built from.
func (pol *Policy) Config() Config {
	return pol.cfg
}

// ---- rules, in table order ----

// Rule 1: bare-metal targets cannot use a heap-backed general allocator.
// Absolute priority over every other fact.
func (pol *Policy) matchNoHeapOS(p platform.Profile, hw hardware.Snapshot) (backend.Type, string, bool) {
	if !p.IsNoHeapOS {
		return 0, "", false
	}
	return backend.EmbeddedHeap,
		reason(RuleNoHeapOS, "embedded-heap: bare-metal target without an OS heap", notConsulted, hw),
		true
}

// Rule 2: debug builds take the system allocator regardless of hardware -
// compile speed and debuggability dominate.
func (pol *Policy) matchDebugBuild(p platform.Profile, hw hardware.Snapshot) (backend.Type, string, bool) {
	if !p.IsDebug() {
		return 0, "", false
	}
	return backend.System,
		reason(RuleDebugBuild, "system: debug build, compile speed and debuggability over throughput", notConsulted, hw),
		true
}

// Rule 3: WASM sandboxes get the system allocator for compatibility.
func (pol *Policy) matchWASM(p platform.Profile, hw hardware.Snapshot) (backend.Type, string, bool) {
	if !p.IsWASM {
		return 0, "", false
	}
	return backend.System,
		reason(RuleWASM, "system: WASM sandbox, compatibility over raw throughput", notConsulted, hw),
		true
}

// Rule 4: mobile platforms follow the configured interpretation - respect
// the hardened native allocator when linked, or plain system fallback.
func (pol *Policy) matchMobile(p platform.Profile, hw hardware.Snapshot) (backend.Type, string, bool) {
	if p.OSFamily != platform.FamilyMobile {
		return 0, "", false
	}
	if pol.cfg.MobileRule == MobileSecureNative && p.Backends.Has(backend.PlatformSecureNative) {
		text := fmt.Sprintf("platform-secure-native: mobile platform security policy on %s, mobile_rule=%s", p.OS, pol.cfg.MobileRule)
		return backend.PlatformSecureNative, reason(RuleMobile, text, notConsulted, hw), true
	}
	text := fmt.Sprintf("system: mobile platform %s, mobile_rule=%s", p.OS, pol.cfg.MobileRule)
	if pol.cfg.MobileRule == MobileSecureNative {
		text = fmt.Sprintf("system: mobile platform %s, hardened native backend not linked", p.OS)
	}
	return backend.System, reason(RuleMobile, text, notConsulted, hw), true
}

// Rule 5: BSD and Solaris native allocators are already platform-tuned
// (jemalloc lineage, OpenBSD hardening, libumem); no general-purpose
// backend offers a proven win there.
func (pol *Policy) matchPlatformNative(p platform.Profile, hw hardware.Snapshot) (backend.Type, string, bool) {
	if p.OSFamily != platform.FamilyBSDLike && p.OSFamily != platform.FamilySolarisLike {
		return 0, "", false
	}
	text := fmt.Sprintf("system: %s native allocator is already platform-tuned", p.OS)
	return backend.System, reason(RulePlatformNative, text, notConsulted, hw), true
}

// Rule 6: desktop-class release build with a heap. The only rule that
// consults hardware: a sharded general allocator earns its metadata
// overhead once the machine has enough cores for contention to matter.
// Always matches - System is the universal fallback.
func (pol *Policy) matchDesktop(p platform.Profile, hw hardware.Snapshot) (backend.Type, string, bool) {
	threshold := pol.cfg.CoreThreshold

	if hw.CPUCores >= threshold {
		if p.Backends.Has(backend.PlatformSecureNative) {
			text := fmt.Sprintf("platform-secure-native: hardened variant linked, %s clear threshold %d", coresText(hw.CPUCores), threshold)
			return backend.PlatformSecureNative, reason(RuleDesktop, text, consulted, hw), true
		}
		if p.Backends.Has(backend.HighPerformanceGeneral) {
			text := fmt.Sprintf("high-performance-general: release build, %s clear threshold %d", coresText(hw.CPUCores), threshold)
			return backend.HighPerformanceGeneral, reason(RuleDesktop, text, consulted, hw), true
		}
		text := fmt.Sprintf("system: no high-performance backend linked, %s", coresText(hw.CPUCores))
		return backend.System, reason(RuleDesktop, text, consulted, hw), true
	}

	text := fmt.Sprintf("system: %s below threshold %d, contention win unlikely", coresText(hw.CPUCores), threshold)
	return backend.System, reason(RuleDesktop, text, consulted, hw), true
}

// ---- reason construction ----

const (
	consulted    = true
	notConsulted = false
)

// coresText renders a core count with the correct plural form; reason
// strings feed audit fingerprints, so the text is part of the contract.
func coresText(n int) string {
	if n == 1 {
		return "1 core"
	}
	return fmt.Sprintf("%d cores", n)
}

// reason assembles the full reason string contract: rule id, the hardware
// facts that were consulted (or an explicit not-consulted marker), and the
// probe-degraded flag whenever it is set.
func reason(ruleID, text string, hwConsulted bool, hw hardware.Snapshot) string {
	facts := "hardware not consulted"
	if hwConsulted {
		facts = fmt.Sprintf("%s, %s total RAM", coresText(hw.CPUCores), hardware.FormatSize(hw.TotalMemoryBytes))
	}
	s := fmt.Sprintf("%s (rule %s; %s)", text, ruleID, facts)
	if hw.Degraded {
		s += " [probe degraded, conservative defaults assumed]"
	}
	return s
}

// PinnedDecision builds the decision for an explicit backend override.
// Overrides bypass the table entirely; the recommendation API keeps using
// the table, which is what makes optimality drift observable.
func PinnedDecision(t backend.Type, source string, hw hardware.Snapshot) Decision {
	text := fmt.Sprintf("%s: pinned by %s, rule table bypassed", t, source)
	return Decision{
		Chosen: t,
		Reason: reason(RulePinned, text, notConsulted, hw),
		RuleID: RulePinned,
	}
}
