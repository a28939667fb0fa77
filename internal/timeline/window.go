package timeline

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// QuarterWindow is the default rolling visibility span: the start of the
// quarter preceding the reference date's quarter through the end of the
// second quarter after it (a four-quarter span).
type QuarterWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewQuarterWindow computes the rolling window around a reference date.
func NewQuarterWindow(reference time.Time) QuarterWindow {
	year, quarter := quarterOf(reference)

	startYear, startQuarter := shiftQuarter(year, quarter, -1)
	endYear, endQuarter := shiftQuarter(year, quarter, 2)

	return QuarterWindow{
		Start: quarterStart(startYear, startQuarter),
		End:   quarterEnd(endYear, endQuarter),
	}
}

// Contains reports whether an iteration lies fully inside the window.
// This is stricter than an overlap test: a sprint straddling the window
// edge does not qualify.
func (w QuarterWindow) Contains(record IterationRecord) bool {
	if record.Start.Before(w.Start) {
		return false
	}
	return !record.End.After(w.End)
}

// CurrentIterationContext returns the canonical paths of every indexed
// iteration fully contained in the rolling quarter window around the
// reference date. An empty result is normal; callers fall back to the
// "any non-empty iteration" floor.
func CurrentIterationContext(index IterationIndex, reference time.Time) []string {
	window := NewQuarterWindow(reference)

	// The index holds up to three spellings per record; dedupe on the
	// canonical path.
	seen := make(map[string]bool)
	var paths []string
	for _, record := range index {
		if seen[record.Path] {
			continue
		}
		seen[record.Path] = true
		if window.Contains(record) {
			paths = append(paths, record.Path)
		}
	}

	sort.Strings(paths)
	log.Debug().
		Time("windowStart", window.Start).
		Time("windowEnd", window.End).
		Int("iterations", len(paths)).
		Msg("Resolved current iteration context")
	return paths
}

func quarterOf(t time.Time) (year, quarter int) {
	return t.Year(), (int(t.Month())-1)/3 + 1
}

// shiftQuarter moves a (year, quarter) pair by offset quarters, wrapping
// across year boundaries until the quarter number is within [1,4].
func shiftQuarter(year, quarter, offset int) (int, int) {
	quarter += offset
	for quarter > 4 {
		quarter -= 4
		year++
	}
	for quarter < 1 {
		quarter += 4
		year--
	}
	return year, quarter
}

func quarterStart(year, quarter int) time.Time {
	month := time.Month((quarter-1)*3 + 1)
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// quarterEnd is the last nanosecond of the quarter.
func quarterEnd(year, quarter int) time.Time {
	nextYear, nextQuarter := shiftQuarter(year, quarter, 1)
	return quarterStart(nextYear, nextQuarter).Add(-time.Nanosecond)
}
