package models

import (
	"math"
	"time"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant. Adjacent intervals
// (aEnd == bStart) do not overlap. Comparison is on absolute instants;
// time.Time.Before/After compare the underlying instant regardless of
// location, so the check is timezone-independent.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DurationMinutes returns the interval length rounded to whole minutes.
// This is the only way a TimeEntry duration is ever computed.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
