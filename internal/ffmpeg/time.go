package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockToSeconds converts "HH:MM:SS[.frac]" (also "MM:SS" or a bare
// seconds value) into seconds. Malformed input yields 0.
func ClockToSeconds(clock string) float64 {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	switch len(parts) {
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		s, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0
		}
		return float64(h)*3600 + float64(m)*60 + s
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		s, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0
		}
		return float64(m)*60 + s
	default:
		s, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0
		}
		return s
	}
}

// FormatClock renders seconds as "HH:MM:SS", truncating fractions.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
