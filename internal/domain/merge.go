package domain

import (
	"fmt"
	"time"
)

// DuplicatePolicy selects which raw observation fills a slot when several
// share its timestamp.
type DuplicatePolicy string

const (
	KeepFirst DuplicatePolicy = "first"
	KeepLast  DuplicatePolicy = "last"
)

// ParseDuplicatePolicy accepts "first", "last", or "" (first).
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", KeepFirst:
		return KeepFirst, nil
	case KeepLast:
		return KeepLast, nil
	default:
		return "", &ConfigError{Field: "duplicate_policy", Reason: fmt.Sprintf("unknown policy %q", s)}
	}
}

// MergeStats counts what the merge did with the raw input.
type MergeStats struct {
	Matched    int // slots filled from a raw observation
	Empty      int // slots with no raw observation
	Duplicates int // raw observations discarded because their slot was already taken
	OffGrid    int // raw observations whose timestamp is not a grid slot
}

// Merge left-joins raw observations onto the grid by exact timestamp. The
// result has exactly one record per slot, in grid order; unmatched slots
// carry all-missing fields. Wind chill is derived for every slot.
func Merge(grid []time.Time, raw []RawObservation, policy DuplicatePolicy) ([]Record, MergeStats) {
	var stats MergeStats

	slot := make(map[int64]int, len(grid))
	for i, ts := range grid {
		slot[ts.Unix()] = i
	}

	match := make([]int, len(grid))
	for i := range match {
		match[i] = -1
	}
	for j, obs := range raw {
		i, ok := slot[obs.Timestamp.Unix()]
		if !ok || !obs.Timestamp.Equal(grid[i]) {
			stats.OffGrid++
			continue
		}
		if match[i] >= 0 {
			stats.Duplicates++
			if policy != KeepLast {
				continue
			}
		}
		match[i] = j
	}

	records := make([]Record, len(grid))
	for i, ts := range grid {
		rec := Record{Timestamp: ts}
		if j := match[i]; j >= 0 {
			rec.Fields = raw[j].Fields
			stats.Matched++
		} else {
			stats.Empty++
		}
		rec.Chil = WindChill(rec.Tair, rec.Wspd)
		records[i] = rec
	}
	return records, stats
}
