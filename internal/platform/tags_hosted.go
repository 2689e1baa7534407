//go:build !autoalloc_embedded

package platform

const noHeapOS = false
