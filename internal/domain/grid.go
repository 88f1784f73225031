package domain

import "time"

// SampleInterval is the logger's fixed sampling cadence.
const SampleInterval = 5 * time.Minute

// BuildGrid returns every expected sampling instant from start to end inclusive
// at SampleInterval spacing. start must itself sit on a 5-minute boundary; it
// is never re-aligned. end need not be aligned: the last slot is the latest
// one not after end.
func BuildGrid(start, end time.Time) ([]time.Time, error) {
	if start.After(end) {
		return nil, &ConfigError{Field: "start_datetime", Reason: "start is after end_datetime"}
	}
	if !onGrid(start) {
		return nil, &ConfigError{
			Field:  "start_datetime",
			Reason: "start " + start.Format("2006-01-02 15:04:05") + " is not on a 5-minute boundary",
		}
	}

	n := int(end.Sub(start)/SampleInterval) + 1
	grid := make([]time.Time, n)
	for i := range grid {
		grid[i] = start.Add(time.Duration(i) * SampleInterval)
	}
	return grid, nil
}

// onGrid reports whether t falls exactly on a sampling boundary.
func onGrid(t time.Time) bool {
	return t.Truncate(SampleInterval).Equal(t)
}
