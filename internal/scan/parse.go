package scan

import (
	"strconv"
	"time"
)

func parseDimension(value string) int {
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func parseCaptureTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	// Local-time extractors often omit the offset.
	return time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
}
