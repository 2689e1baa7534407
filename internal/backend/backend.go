// Package backend defines the closed set of allocator backends the engine
// can select between.
//
// Exactly one backend is active per process. The set is closed by design:
// the selection policy is total over it, and every member has a concrete
// implementation behind it (the engine names a choice, it never allocates).
package backend

import (
	"encoding/json"
	"fmt"
)

// Type identifies one allocator backend.
//
// The zero value is System, the universal fallback. Selection priority when
// multiple backends are available is decided by the policy rule table, never
// by ordering here.
type Type uint8

const (
	// System is the operating system's default allocator. Maximum
	// compatibility; the catch-all for every rule that declines to pick a
	// specialized backend.
	System Type = iota

	// HighPerformanceGeneral is a free-list-sharded, multi-thread-optimized
	// general allocator (mimalloc-class). Pays extra metadata overhead in
	// exchange for reduced contention on multi-core machines.
	HighPerformanceGeneral

	// PlatformSecureNative is a security-hardened allocator variant: the
	// platform's own hardened allocator on mobile targets (Scudo, libmalloc)
	// or the hardened build of the general allocator on desktop targets.
	PlatformSecureNative

	// EmbeddedHeap is a bump/free-list allocator over a fixed static region,
	// for bare-metal targets with no heap-backed OS allocator.
	EmbeddedHeap
)

// All lists every backend type, in declaration order.
// Used by totality tests and by the set representation below.
func All() []Type {
	return []Type{System, HighPerformanceGeneral, PlatformSecureNative, EmbeddedHeap}
}

// String returns the stable wire name for the backend.
// These names appear in reason strings, JSON output, and audit records;
// changing them breaks recorded fingerprints.
func (t Type) String() string {
	switch t {
	case System:
		return "system"
	case HighPerformanceGeneral:
		return "high-performance-general"
	case PlatformSecureNative:
		return "platform-secure-native"
	case EmbeddedHeap:
		return "embedded-heap"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Parse converts a wire name back into a Type.
// Accepts exactly the strings produced by String.
func Parse(s string) (Type, error) {
	for _, t := range All() {
		if t.String() == s {
			return t, nil
		}
	}
	return System, fmt.Errorf("unknown allocator type %q", s)
}

// MarshalJSON emits the wire name.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the wire name.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Set is a fixed-capacity set of backend types.
//
// A bitmask rather than a map: the bootstrap path runs before the final
// allocator is bound, so profile state must not route through heap
// containers. Set is a plain value type with no hidden allocation.
type Set uint8

// NewSet builds a set from the given types.
func NewSet(types ...Type) Set {
	var s Set
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

// With returns a copy of the set including t.
func (s Set) With(t Type) Set {
	return s | Set(1)<<uint(t)
}

// Has reports whether t is in the set.
func (s Set) Has(t Type) bool {
	return s&(Set(1)<<uint(t)) != 0
}

// Slice returns the members in declaration order.
func (s Set) Slice() []Type {
	var out []Type
	for _, t := range All() {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// String renders the members as a comma-joined list, for reason strings
// and debug output.
func (s Set) String() string {
	out := ""
	for _, t := range s.Slice() {
		if out != "" {
			out += ","
		}
		out += t.String()
	}
	if out == "" {
		return "none"
	}
	return out
}
