package viewmodel

import (
	"fmt"
	"math"
	"strconv"
)

// FormatRuntime renders minutes as "2h 28m". Zero or negative yields "".
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ReleaseYear parses the year of a YYYY-MM-DD date, 0 when absent.
func ReleaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

// Round1 rounds to one decimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
