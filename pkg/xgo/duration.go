package xgo

import (
	"fmt"
	"time"
)

var durationUnits = []struct {
	div float64
	sym string
}{
	{60 * 60 * 24, "d"},
	{60 * 60, "h"},
	{60, "m"},
	{1, "s"},
	{1e-3, "ms"},
	{1e-6, "µs"},
}

// ShortDuration 按最合适的单位输出，保留三位有效数字左右，如 1.50h、12.3s、840µs
func ShortDuration(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	sec := d.Seconds()
	for _, u := range durationUnits {
		if sec < u.div {
			continue
		}
		val := sec / u.div
		switch {
		case val >= 100:
			return fmt.Sprintf("%.0f%s", val, u.sym)
		case val >= 10:
			return fmt.Sprintf("%.1f%s", val, u.sym)
		default:
			return fmt.Sprintf("%.2f%s", val, u.sym)
		}
	}
	return fmt.Sprintf("%dns", d.Nanoseconds())
}

// AvgDuration d/n 的 ShortDuration，n<=0 返回 "0"
func AvgDuration(d time.Duration, n int64) string {
	if n <= 0 {
		return "0"
	}
	return ShortDuration(time.Duration(int64(d) / n))
}

// PerSecond n 在 d 内的每秒速率，d<=0 返回 0
func PerSecond(n int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}
