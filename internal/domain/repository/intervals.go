package repository

import "fmt"

// Interval is a supported candle interval.
type Interval string

const (
	Interval1m Interval = "1m"
	Interval5m Interval = "5m"
	Interval1h Interval = "1h"
	Interval1d Interval = "1d"
)

// NormalizeInterval validates a raw interval string, defaulting to daily.
func NormalizeInterval(s string) (Interval, error) {
	if s == "" {
		return Interval1d, nil
	}
	switch Interval(s) {
	case Interval1m, Interval5m, Interval1h, Interval1d:
		return Interval(s), nil
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}
