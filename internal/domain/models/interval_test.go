package models

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"disjoint before", at(9, 0), at(10, 0), at(11, 0), at(12, 0), false},
		{"disjoint after", at(11, 0), at(12, 0), at(9, 0), at(10, 0), false},
		{"adjacent end-to-start", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"adjacent start-to-end", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"partial overlap", at(9, 0), at(10, 30), at(10, 0), at(11, 0), true},
		{"contained", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"containing", at(10, 0), at(11, 0), at(9, 0), at(12, 0), true},
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"one minute shared", at(9, 0), at(10, 1), at(10, 0), at(11, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}

			// Overlap is symmetric
			if rev := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); rev != got {
				t.Errorf("Overlaps() not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"exact hour", at(9, 0), at(10, 0), 60},
		{"ninety minutes", at(9, 0), at(10, 30), 90},
		{"rounds half up", at(9, 0), at(9, 0).Add(90 * time.Second), 2},
		{"rounds down", at(9, 0), at(9, 0).Add(80 * time.Second), 1},
		{"sub-minute rounds to zero", at(9, 0), at(9, 0).Add(20 * time.Second), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DurationMinutes(tt.start, tt.end); got != tt.want {
				t.Errorf("DurationMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}
