package hardware

import (
	"fmt"
	"strconv"
)

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatSize renders a byte count with a human-scale binary unit, keeping at
// most one decimal place: 0 -> "0B", 1024 -> "1KB", 1536 -> "1.5KB",
// 1<<30 -> "1GB". Shift arithmetic only; called from reason-string
// construction on the bootstrap path, so it must stay allocation-light.
func FormatSize(bytes uint64) string {
	if bytes == 0 {
		return "0B"
	}

	unit := 0
	switch {
	case bytes >= 1<<50:
		unit = 5
	case bytes >= 1<<40:
		unit = 4
	case bytes >= 1<<30:
		unit = 3
	case bytes >= 1<<20:
		unit = 2
	case bytes >= 1<<10:
		unit = 1
	}

	if unit == 0 {
		return strconv.FormatUint(bytes, 10) + "B"
	}

	shift := uint(unit * 10)
	value := bytes >> shift
	remainder := bytes & ((1 << shift) - 1)
	if remainder == 0 {
		return strconv.FormatUint(value, 10) + sizeUnits[unit]
	}

	fraction := (remainder * 10) >> shift
	if fraction == 0 {
		return strconv.FormatUint(value, 10) + sizeUnits[unit]
	}
	return fmt.Sprintf("%d.%d%s", value, fraction, sizeUnits[unit])
}
