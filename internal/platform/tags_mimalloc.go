//go:build !autoalloc_nomimalloc

package platform

// mimallocLinked reports that the high-performance general backend is
// compiled into this binary. On by default; disable with the
// autoalloc_nomimalloc tag.
const mimallocLinked = true
