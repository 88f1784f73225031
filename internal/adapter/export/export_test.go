package export

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []domain.Record {
	first := domain.Record{
		Timestamp: day(1),
		Fields: domain.Fields{
			Record: domain.Valid(1),
			Tair:   domain.Valid(5.5),
			Relh:   domain.Missing(),
			Srad:   domain.Valid(0),
			Wspd:   domain.Valid(2),
			Wmax:   domain.OutOfRange(),
			Wdir:   domain.Valid(270),
			Rain:   domain.Valid(0.25),
			Batv:   domain.Valid(12.6),
		},
		Chil: domain.Valid(3.35),
	}
	// zero value: every field missing
	empty := domain.Record{Timestamp: day(1).Add(5 * time.Minute)}
	return []domain.Record{first, empty}
}

func sampleReport() domain.Report {
	nan := math.NaN()
	return domain.Report{
		Input: "NWC0_raw.dat",
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 1, 2, 23, 55, 0, 0, time.UTC),
		Rows: []domain.SummaryRow{
			{
				Date:          day(1),
				FileName:      "NWC0_20230101.dat",
				Missing:       3,
				Precipitation: 1.5,
				Tair:          domain.Stats{Max: 10.25, Min: -2, Mean: 4.5},
				Wspd:          domain.Stats{Max: 3, Min: 0, Mean: 1.25},
			},
			{
				Date:     day(2),
				FileName: "NWC0_20230102.dat",
				Missing:  288,
				Tair:     domain.Stats{Max: nan, Min: nan, Mean: nan},
				Wspd:     domain.Stats{Max: nan, Min: nan, Mean: nan},
			},
		},
	}
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, sampleRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "TIMESTAMP,RECORD,TAIR,RELH,SRAD,WSPD,WMAX,WDIR,RAIN,BATV,CHIL", lines[0])
	assert.Equal(t, "2023-01-01 00:00:00,1,5.5,-999,0,2,-998,270,0.25,12.6,3.35", lines[1])
	assert.Equal(t, "2023-01-01 00:05:00,-999,-999,-999,-999,-999,-999,-999,-999,-999,-999", lines[2])
}

func TestDayWriter_WriteDay(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewDayWriter(dir, slog.Default())

	path, err := w.WriteDay(context.Background(), domain.DayFile{Date: day(1), Records: sampleRecords()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "NWC0_20230101.dat"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}

func TestDayWriter_EmptyDayWritesHeader(t *testing.T) {
	dir := t.TempDir()
	path, err := NewDayWriter(dir, slog.Default()).WriteDay(context.Background(), domain.DayFile{Date: day(3)})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "TIMESTAMP,RECORD,TAIR,RELH,SRAD,WSPD,WMAX,WDIR,RAIN,BATV,CHIL\n", string(data))
}

func TestDayWriter_Overwrites(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "NWC0_20230101.dat")
	require.NoError(t, os.WriteFile(existing, []byte(strings.Repeat("stale\n", 100)), 0o600))

	_, err := NewDayWriter(dir, slog.Default()).WriteDay(context.Background(), domain.DayFile{Date: day(1)})
	require.NoError(t, err)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestFormatReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Statistics Report", lines[0])
	assert.Equal(t, "Input file: NWC0_raw.dat", lines[1])
	assert.Equal(t, "Output Data:", lines[2])
	assert.Equal(t, strings.Repeat(" ", 62)+"Air Temperature (C)     Wind Speed (m/s)", lines[3])
	assert.Equal(t,
		"     File/day      "+"Missing Observations  "+"Precipitation (mm)   "+
			"Max    Min    Mean      Max    Min    Mean   ",
		lines[4])
	assert.Equal(t,
		" NWC0_20230101.dat "+
			strings.Repeat(" ", 10)+"3"+strings.Repeat(" ", 11)+
			strings.Repeat(" ", 8)+"1.50"+strings.Repeat(" ", 9)+
			"10.25  -2.00  4.50      3.00   0.00   1.25   ",
		lines[5])
	assert.Equal(t,
		" NWC0_20230102.dat "+
			strings.Repeat(" ", 9)+"288"+strings.Repeat(" ", 10)+
			strings.Repeat(" ", 8)+"0.00"+strings.Repeat(" ", 9)+
			"NaN    NaN    NaN       NaN    NaN    NaN    ",
		lines[6])
}

func TestReportWriter_WriteReport(t *testing.T) {
	dir := t.TempDir()
	path, err := NewReportWriter(dir, slog.Default()).WriteReport(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "NWC0_REPORT_20230101_20230102.txt"), path)
	assert.FileExists(t, path)
}

func TestWorkbookWriter_WriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	path, err := NewWorkbookWriter(dir, slog.Default()).WriteWorkbook(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "NWC0_REPORT_20230101_20230102.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "File/day", rows[0][0])
	assert.Equal(t, []string{"NWC0_20230101.dat", "3", "1.5", "10.25", "-2", "4.5", "3", "0", "1.25"}, rows[1])

	require.GreaterOrEqual(t, len(rows[2]), 3)
	assert.Equal(t, []string{"NWC0_20230102.dat", "288", "0"}, rows[2][:3])
	for _, cell := range rows[2][3:] {
		assert.Empty(t, cell, "no-value statistics stay blank")
	}
}

func TestCenter(t *testing.T) {
	assert.Equal(t, " ab  ", center("ab", 5))
	assert.Equal(t, "abcdef", center("abcdef", 4))
}

func TestWriters_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()

	_, err := NewDayWriter(dir, slog.Default()).WriteDay(ctx, domain.DayFile{Date: day(1)})
	require.ErrorIs(t, err, context.Canceled)
	_, err = NewReportWriter(dir, slog.Default()).WriteReport(ctx, sampleReport())
	require.ErrorIs(t, err, context.Canceled)
	_, err = NewWorkbookWriter(dir, slog.Default()).WriteWorkbook(ctx, sampleReport())
	require.ErrorIs(t, err, context.Canceled)
}
