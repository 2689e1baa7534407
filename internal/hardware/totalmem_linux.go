//go:build linux

package hardware

import "syscall"

// totalMemory reads total physical memory via the sysinfo(2) syscall.
// Totalram is reported in units of Unit bytes on modern kernels.
func totalMemory() (uint64, error) {
	var info syscall.Sysinfo_t
	if err := syscall.Sysinfo(&info); err != nil {
		return 0, err
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(info.Totalram) * unit, nil
}
