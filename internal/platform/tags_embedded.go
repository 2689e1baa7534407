//go:build autoalloc_embedded

package platform

// noHeapOS marks a bare-metal target with no heap-backed OS allocator.
// Forces the embedded heap regardless of every other build fact.
const noHeapOS = true
