//go:build !autoalloc_debug

package platform

const buildModeDebug = false
