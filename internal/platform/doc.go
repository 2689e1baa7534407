// Package platform resolves the immutable build-time profile of the target.
//
// ARCHITECTURE:
//
// Everything in a Profile is a compile-time fact: target OS and architecture
// (Go toolchain constants), build mode and linked backends (build tags).
// Resolve consults no runtime state, so it is referentially transparent -
// calling it twice always yields identical values. The selection policy
// takes a Profile as an explicit argument, which keeps it testable with
// synthetic profiles instead of a matrix of cross-compiled builds.
//
// Build configuration surface (tags mirror the upstream feature flags):
//
//	autoalloc_debug       build mode debug (default: release)
//	autoalloc_nomimalloc  exclude the high-performance general backend
//	autoalloc_secure      link the security-hardened backend variant
//	autoalloc_embedded    bare-metal target: no heap-backed OS allocator
package platform
