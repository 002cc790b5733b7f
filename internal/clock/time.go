// Package clock represents wall-clock instants as seconds-of-day.
//
// GTFS schedules routinely encode overnight trips as "25:30:00", so
// times are kept as plain seconds and never wrapped modulo 86400.
package clock

import (
	"fmt"
	"math"
)

// Seconds is a point in time expressed as seconds since midnight of the
// service day. It is not wrapped at 86400 so that overnight trips
// (e.g. "25:30:00") compare correctly against same-day times.
type Seconds float64

// Max is used as the "unreached" sentinel in best-time tables.
const Max Seconds = Seconds(math.MaxFloat64)

// ParseHMS parses a GTFS "HH:MM:SS" string where HH may exceed 24.
func ParseHMS(s string) (Seconds, error) {
	var h, m, sec int
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if err != nil || n != 3 {
		return 0, fmt.Errorf("clock: invalid HH:MM:SS value %q", s)
	}
	if m < 0 || m > 59 || sec < 0 || sec > 59 || h < 0 {
		return 0, fmt.Errorf("clock: invalid HH:MM:SS value %q", s)
	}
	return Seconds(h*3600 + m*60 + sec), nil
}

// String renders the time as HH:MM:SS, preserving hours past 24.
func (t Seconds) String() string {
	total := int64(t)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (t Seconds) Add(delta float64) Seconds {
	return t + Seconds(delta)
}

func (t Seconds) Sub(other Seconds) float64 {
	return float64(t - other)
}
