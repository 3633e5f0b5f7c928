package enrich

import "fmt"

// FormatBitrate renders a bitrate in Mbps with one decimal. Zero or negative
// bitrates render empty.
func FormatBitrate(bitsPerSecond int64) string {
	if bitsPerSecond <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f Mbps", float64(bitsPerSecond)/1_000_000)
}

// sizeUnits in ascending 1024 steps.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in the largest unit that keeps the value
// under 1024. GB and TB get one decimal, smaller units none.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return ""
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	if sizeUnits[unit] == "GB" || sizeUnits[unit] == "TB" {
		return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
	}
	return fmt.Sprintf("%.0f %s", value, sizeUnits[unit])
}
