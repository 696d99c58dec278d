package util

import (
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// DateOf formats a UTC instant as a calendar date string.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// TimestampOf formats a UTC instant with second precision.
func TimestampOf(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ForwardDates returns n consecutive daily date strings starting at start.
func ForwardDates(start time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	day := start.UTC()
	for i := 0; i < n; i++ {
		out = append(out, day.Format(DateLayout))
		day = day.AddDate(0, 0, 1)
	}
	return out
}
