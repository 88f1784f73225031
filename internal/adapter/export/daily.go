// Package export writes the run's flat-file outputs: one QA'd CSV per day,
// the fixed-width summary report, and an optional XLSX copy of the report.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

// dayHeader is the column order of every day file.
var dayHeader = []string{"TIMESTAMP", "RECORD", "TAIR", "RELH", "SRAD", "WSPD", "WMAX", "WDIR", "RAIN", "BATV", "CHIL"}

// DayWriter writes NWC0_YYYYMMDD.dat files into one directory.
type DayWriter struct {
	dir    string
	logger *slog.Logger
}

// NewDayWriter creates a DayWriter for dir.
func NewDayWriter(dir string, logger *slog.Logger) *DayWriter {
	return &DayWriter{dir: dir, logger: logger}
}

// WriteDay writes one day file and returns its path. A day with no records
// still gets a file with the header row.
func (w *DayWriter) WriteDay(ctx context.Context, day domain.DayFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, path, err := create(w.dir, day.Name())
	if err != nil {
		return "", err
	}
	if err := WriteRecords(f, day.Records); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", day.Name(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", day.Name(), err)
	}
	w.logger.Debug("day file written", "path", path, "records", len(day.Records))
	return path, nil
}

// WriteRecords writes the header and one CSV row per record to dst.
func WriteRecords(dst io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(dst)
	if err := cw.Write(dayHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(dayHeader))
	for _, rec := range records {
		row[0] = rec.Timestamp.UTC().Format(timestampLayout)
		row[1] = encode(rec.Record)
		row[2] = encode(rec.Tair)
		row[3] = encode(rec.Relh)
		row[4] = encode(rec.Srad)
		row[5] = encode(rec.Wspd)
		row[6] = encode(rec.Wmax)
		row[7] = encode(rec.Wdir)
		row[8] = encode(rec.Rain)
		row[9] = encode(rec.Batv)
		row[10] = encode(rec.Chil)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", row[0], err)
		}
	}
	cw.Flush()
	return cw.Error()
}
