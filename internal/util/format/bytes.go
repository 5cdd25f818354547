// Package format renders sizes and counts for status lines.
package format

import "strconv"

var units = [...]string{"KB", "MB", "GB", "TB", "PB"}

// HumanizeBytes renders a byte count with binary units, e.g. "1.5 MB".
// Negative counts are clamped to zero.
func HumanizeBytes(b int64) string {
	if b < 1024 {
		return strconv.FormatInt(max(b, 0), 10) + " B"
	}
	v := float64(b) / 1024
	u := 0
	for v >= 1024 && u < len(units)-1 {
		v /= 1024
		u++
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + units[u]
}

// Frames renders a still count, e.g. "1 frame" or "12 frames".
func Frames(n int) string {
	if n == 1 {
		return "1 frame"
	}
	return strconv.Itoa(n) + " frames"
}
