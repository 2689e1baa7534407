// Package autoalloc decides, once per process, which heap-allocator backend
// serves all dynamic memory requests, and exposes the decision for
// introspection and optimality auditing.
//
// The decision combines facts fixed at build time (target OS family,
// architecture, build mode, which backend libraries are linked) with facts
// probed once at first use (core count, total memory). Selection is an
// ordered rule table with the system allocator as the universal fallback;
// see internal/policy for the table.
//
// The engine only names a choice. It implements no allocation itself, never
// re-selects after binding, and makes no promise that the chosen backend
// initializes successfully - that failure surface belongs to the backend.
package autoalloc

import (
	"github.com/roach88/autoalloc/internal/backend"
	"github.com/roach88/autoalloc/internal/hardware"
)

// AllocatorType identifies one allocator backend. Exactly one is active per
// process once bound.
type AllocatorType = backend.Type

// Re-exported backend constants.
const (
	System                 = backend.System
	HighPerformanceGeneral = backend.HighPerformanceGeneral
	PlatformSecureNative   = backend.PlatformSecureNative
	EmbeddedHeap           = backend.EmbeddedHeap
)

// SystemInfo describes the build and the machine the decision was made on.
type SystemInfo struct {
	CPUCores         int    `json:"cpu_cores"`
	TotalMemoryBytes uint64 `json:"total_memory_bytes"`
	OS               string `json:"os"`
	Arch             string `json:"arch"`
	IsWASM           bool   `json:"is_wasm"`
	IsDebug          bool   `json:"is_debug"`
	ProbeDegraded    bool   `json:"probe_degraded"`
}

// AllocatorInfo is the public snapshot of the bound decision.
//
// Created once at first introspection and immutable afterward. The Reason
// string embeds the matched rule id, the hardware facts consulted (or an
// explicit not-consulted marker), and the probe-degraded flag when set.
type AllocatorInfo struct {
	AllocatorType AllocatorType `json:"allocator_type"`
	Reason        string        `json:"reason"`
	RuleID        string        `json:"rule_id"`
	SystemInfo    SystemInfo    `json:"system_info"`
}

// GetAllocatorInfo returns the cached, bound decision plus the hardware
// snapshot. Idempotent; the first call triggers binding, every later call
// returns the identical value without recomputing.
func GetAllocatorInfo() AllocatorInfo {
	return bound()
}

// GetAllocatorType returns just the bound backend type.
func GetAllocatorType() AllocatorType {
	return bound().AllocatorType
}

// FormatMemorySize renders a byte count with a human-scale unit:
// 0 -> "0B", 1024 -> "1KB", 1073741824 -> "1GB". Display helper only; it
// takes no part in selection.
func FormatMemorySize(bytes uint64) string {
	return hardware.FormatSize(bytes)
}
