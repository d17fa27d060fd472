package sysdash

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"time"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with the largest fitting binary unit,
// rounded to two decimals: 1500 -> "1.46 KB". Counts beyond the TB range
// stay in TB.
func FormatBytes(n uint64) string {
	if n == 0 {
		return "0 Bytes"
	}
	// floor(log1024(n)) without floating point error at exact powers
	i := (bits.Len64(n) - 1) / 10
	i = min(i, len(byteUnits)-1)

	v := math.Round(float64(n)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// BytesToMB converts a byte counter to megabytes
func BytesToMB(n uint64) float64 {
	return float64(n) / (1024 * 1024)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatPercent2(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

func formatMB(mb float64) string {
	return fmt.Sprintf("%.2f MB", mb)
}

func formatUptime(u *UptimeInfo) string {
	return fmt.Sprintf("%dd %dh %dm", u.Days, u.Hours, u.Minutes)
}

// formatClock is the label used for CPU samples and the last-update line
func formatClock(t time.Time) string {
	return t.Local().Format("15:04:05")
}

// clampPercent bounds p to [0,100]; NaN becomes 0
func clampPercent(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}
