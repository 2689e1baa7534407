//go:build darwin

package hardware

import "syscall"

// totalMemory reads total physical memory via sysctl hw.memsize.
func totalMemory() (uint64, error) {
	return syscall.SysctlUint64("hw.memsize")
}
