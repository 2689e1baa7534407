//go:build !linux && !darwin && !windows

package hardware

import (
	"errors"
	"runtime"
)

// errUnsupported marks platforms with no memory query path (WASM sandboxes,
// the BSDs, anything else). The snapshot degrades to defaults instead of
// failing - total memory never decides selection on these targets anyway.
var errUnsupported = errors.New("total memory query unsupported on " + runtime.GOOS)

func totalMemory() (uint64, error) {
	return 0, errUnsupported
}
