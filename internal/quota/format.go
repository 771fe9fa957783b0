package quota

import "fmt"

var unitPrefixes = []string{"", "K", "M", "G", "T", "P"}

// FormatBytes renders a byte count as a binary-unit string with two
// decimal places, e.g. 1536 -> "1.50 KB". Zero and negative counts
// render as "0 B". Values past the last prefix clamp to "P".
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	value := float64(bytes)
	idx := 0
	for value >= 1024 && idx < len(unitPrefixes)-1 {
		value /= 1024
		idx++
	}

	return fmt.Sprintf("%.2f %sB", value, unitPrefixes[idx])
}
