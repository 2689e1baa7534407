//go:build autoalloc_secure

package platform

// secureLinked reports that the security-hardened backend variant is
// compiled in. Off by default; roughly 10% allocation overhead when chosen.
const secureLinked = true
