package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

// ReportWriter writes the fixed-width summary report.
type ReportWriter struct {
	dir    string
	logger *slog.Logger
}

// NewReportWriter creates a ReportWriter for dir.
func NewReportWriter(dir string, logger *slog.Logger) *ReportWriter {
	return &ReportWriter{dir: dir, logger: logger}
}

// WriteReport writes NWC0_REPORT_<start>_<end>.txt and returns its path.
func (w *ReportWriter) WriteReport(ctx context.Context, report domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := report.FileName()
	f, path, err := create(w.dir, name)
	if err != nil {
		return "", err
	}
	if err := FormatReport(f, report); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	w.logger.Debug("report written", "path", path, "days", len(report.Rows))
	return path, nil
}

// FormatReport renders the report. Column widths are fixed: the day name is
// centered in 19, the missing count in 22, precipitation in 21, then the
// temperature and wind speed max/min/mean are left-aligned in 7/7/10 and
// 7/7/7. Days without a valid reading print NaN.
func FormatReport(dst io.Writer, report domain.Report) error {
	bw := bufio.NewWriter(dst)
	fmt.Fprintf(bw, "Statistics Report\nInput file: %s\nOutput Data:\n", report.Input)
	fmt.Fprintf(bw, "%81s%5s%s\n", "Air Temperature (C)", "", "Wind Speed (m/s)")
	fmt.Fprintf(bw, "%s%-22s%-21s%-7s%-7s%-10s%-7s%-7s%-7s\n",
		center("File/day", 19), "Missing Observations", "Precipitation (mm)",
		"Max", "Min", "Mean", "Max", "Min", "Mean")

	for _, row := range report.Rows {
		fmt.Fprintf(bw, "%s%s%s%-7.2f%-7.2f%-10.2f%-7.2f%-7.2f%-7.2f\n",
			center(row.FileName, 19),
			center(strconv.Itoa(row.Missing), 22),
			center(strconv.FormatFloat(row.Precipitation, 'f', 2, 64), 21),
			row.Tair.Max, row.Tair.Min, row.Tair.Mean,
			row.Wspd.Max, row.Wspd.Min, row.Wspd.Mean,
		)
	}
	return bw.Flush()
}
