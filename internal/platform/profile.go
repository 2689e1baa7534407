package platform

import "github.com/roach88/autoalloc/internal/backend"

// OSFamily buckets target operating systems by allocator policy, not by
// kernel lineage. Two systems share a family exactly when the selection
// rules treat them identically.
type OSFamily string

const (
	// FamilyDesktop covers desktop/server-class systems where a general
	// high-performance allocator is a candidate (linux, darwin, windows).
	FamilyDesktop OSFamily = "desktop"

	// FamilyMobile covers android and ios, where platform security and
	// compliance policy owns the allocator decision.
	FamilyMobile OSFamily = "mobile"

	// FamilyBSDLike covers the BSDs, whose native allocators are already
	// platform-tuned (jemalloc lineage, OpenBSD hardening).
	FamilyBSDLike OSFamily = "bsd-like"

	// FamilySolarisLike covers solaris and illumos (libumem).
	FamilySolarisLike OSFamily = "solaris-like"

	// FamilyWASM covers sandboxed WebAssembly execution (js, wasip1).
	FamilyWASM OSFamily = "wasm"

	// FamilyUnknown is any GOOS the table does not recognize. The policy's
	// fallback rule treats it as desktop-class.
	FamilyUnknown OSFamily = "unknown"
)

// BuildMode distinguishes debug from release builds.
type BuildMode string

const (
	ModeDebug   BuildMode = "debug"
	ModeRelease BuildMode = "release"
)

// Profile is the immutable compile-time description of the build.
//
// INVARIANTS:
//   - Value-only fields; safe to copy, no shared mutable state.
//   - Identical for the entire process lifetime (it describes the binary,
//     not the machine it runs on).
type Profile struct {
	OSFamily   OSFamily
	OS         string // GOOS, recorded for display
	Arch       string // GOARCH, recorded for display
	BuildMode  BuildMode
	IsWASM     bool
	IsNoHeapOS bool
	Backends   backend.Set
}

// IsDebug reports whether the profile describes a debug build.
func (p Profile) IsDebug() bool {
	return p.BuildMode == ModeDebug
}
