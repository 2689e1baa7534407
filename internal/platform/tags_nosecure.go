//go:build !autoalloc_secure

package platform

const secureLinked = false
