package domain

import (
	"fmt"
	"sort"
	"time"
)

// lastSlotOfDay is the offset of the final sampling slot (23:55) from midnight.
const lastSlotOfDay = 24*time.Hour - SampleInterval

// DayFile is the slice of QA'd records belonging to one calendar day.
type DayFile struct {
	Date    time.Time // midnight of the day
	Records []Record
}

// Name returns the export file name for the day, NWC0_YYYYMMDD.dat.
func (d DayFile) Name() string {
	return DayFileName(d.Date)
}

// DayFileName formats the export file name for the day containing t.
func DayFileName(t time.Time) string {
	return fmt.Sprintf("NWC0_%s.dat", t.Format("20060102"))
}

// ReportFileName formats the summary report name for a run.
func ReportFileName(start, end time.Time) string {
	return fmt.Sprintf("NWC0_REPORT_%s_%s.txt", start.Format("20060102"), end.Format("20060102"))
}

// Days returns midnight of every calendar day from start's date to end's
// date inclusive.
func Days(start, end time.Time) []time.Time {
	first := midnight(start)
	last := midnight(end)
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Partition slices a chronologically ordered series into one DayFile per
// calendar day of [start, end]. A day selects records with
// 00:00 <= timestamp <= 23:55. Days with no records still appear, with an
// empty Records slice. The returned slices share the input's backing array
// and must be treated as read-only.
func Partition(records []Record, start, end time.Time) []DayFile {
	days := Days(start, end)
	files := make([]DayFile, len(days))
	for i, day := range days {
		from, to := day, day.Add(lastSlotOfDay)
		lo := sort.Search(len(records), func(j int) bool { return !records[j].Timestamp.Before(from) })
		hi := sort.Search(len(records), func(j int) bool { return records[j].Timestamp.After(to) })
		if hi < lo {
			hi = lo
		}
		files[i] = DayFile{Date: day, Records: records[lo:hi:hi]}
	}
	return files
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
