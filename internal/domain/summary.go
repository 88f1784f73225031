package domain

import (
	"math"
	"time"
)

// Stats is min/max/mean over the valid readings of one variable. All three
// are NaN when the day has no valid reading.
type Stats struct {
	Max  float64
	Min  float64
	Mean float64
}

// SummaryRow is one calendar day's aggregates.
type SummaryRow struct {
	Date          time.Time
	FileName      string
	Missing       int     // records whose RECORD number is not a valid reading
	Precipitation float64 // sum of valid RAIN; 0 when none
	Tair          Stats
	Wspd          Stats
}

// Summarize aggregates one day. Both sentinel states count as "no value":
// they are skipped by sums and statistics.
func Summarize(day DayFile) SummaryRow {
	row := SummaryRow{
		Date:     day.Date,
		FileName: day.Name(),
	}

	tair := make([]Value, 0, len(day.Records))
	wspd := make([]Value, 0, len(day.Records))
	for _, rec := range day.Records {
		if !rec.Record.IsValid() {
			row.Missing++
		}
		if x, ok := rec.Rain.Float(); ok {
			row.Precipitation += x
		}
		tair = append(tair, rec.Tair)
		wspd = append(wspd, rec.Wspd)
	}
	row.Tair = describe(tair)
	row.Wspd = describe(wspd)
	return row
}

// SummarizeAll aggregates every day in order.
func SummarizeAll(days []DayFile) []SummaryRow {
	rows := make([]SummaryRow, len(days))
	for i, d := range days {
		rows[i] = Summarize(d)
	}
	return rows
}

func describe(vals []Value) Stats {
	s := Stats{Max: math.Inf(-1), Min: math.Inf(1)}
	var sum float64
	var n int
	for _, v := range vals {
		x, ok := v.Float()
		if !ok {
			continue
		}
		s.Max = math.Max(s.Max, x)
		s.Min = math.Min(s.Min, x)
		sum += x
		n++
	}
	if n == 0 {
		return Stats{Max: math.NaN(), Min: math.NaN(), Mean: math.NaN()}
	}
	s.Mean = sum / float64(n)
	return s
}

// Report is the multi-day summary of one run.
type Report struct {
	Input string // data file the run read
	Start time.Time
	End   time.Time
	Rows  []SummaryRow
}

// FileName returns NWC0_REPORT_<start>_<end>.txt.
func (r Report) FileName() string {
	return ReportFileName(r.Start, r.End)
}
