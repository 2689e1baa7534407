package platform

import (
	"runtime"

	"github.com/roach88/autoalloc/internal/backend"
)

// Resolve returns the profile of the current build.
//
// Pure over build configuration: runtime.GOOS/GOARCH are linker constants
// and the feature booleans come from build tags, so every call returns an
// identical value. Callable before the allocator is bound - constructs only
// stack values and the fixed-capacity backend set.
func Resolve() Profile {
	return profileFor(runtime.GOOS, runtime.GOARCH)
}

// profileFor assembles a profile for an arbitrary GOOS/GOARCH pair under the
// current build tags. Split from Resolve so tests can exercise the family
// table for targets this host does not run.
func profileFor(goos, goarch string) Profile {
	mode := ModeRelease
	if buildModeDebug {
		mode = ModeDebug
	}

	fam := familyOf(goos)
	if noHeapOS {
		// Bare-metal builds ignore the GOOS bucket: there is no OS
		// allocator to be loyal to.
		fam = FamilyUnknown
	}

	return Profile{
		OSFamily:   fam,
		OS:         goos,
		Arch:       goarch,
		BuildMode:  mode,
		IsWASM:     fam == FamilyWASM,
		IsNoHeapOS: noHeapOS,
		Backends:   availableBackends(fam),
	}
}

// familyOf maps a GOOS value to its allocator-policy family.
func familyOf(goos string) OSFamily {
	switch goos {
	case "linux", "darwin", "windows":
		return FamilyDesktop
	case "android", "ios":
		return FamilyMobile
	case "freebsd", "netbsd", "openbsd", "dragonfly":
		return FamilyBSDLike
	case "solaris", "illumos":
		return FamilySolarisLike
	case "js", "wasip1":
		return FamilyWASM
	default:
		return FamilyUnknown
	}
}

// availableBackends computes which backends are linked into this binary.
//
// System is always present - it is the totality anchor for the policy.
// The high-performance general backend only ships for desktop OSes outside
// WASM, matching the upstream library's compilation constraints.
func availableBackends(fam OSFamily) backend.Set {
	set := backend.NewSet(backend.System)

	if noHeapOS {
		return set.With(backend.EmbeddedHeap)
	}

	if mimallocLinked && fam == FamilyDesktop {
		set = set.With(backend.HighPerformanceGeneral)
	}

	if secureLinked && fam == FamilyDesktop {
		set = set.With(backend.PlatformSecureNative)
	}

	// Mobile platforms link their hardened allocator by definition
	// (Scudo on android, libmalloc on ios).
	if fam == FamilyMobile {
		set = set.With(backend.PlatformSecureNative)
	}

	return set
}
