//go:build autoalloc_nomimalloc

package platform

const mimallocLinked = false
