package export

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

const reportSheet = "Report"

var workbookHeader = []any{
	"File/day", "Missing Observations", "Precipitation (mm)",
	"Air Temperature Max (C)", "Air Temperature Min (C)", "Air Temperature Mean (C)",
	"Wind Speed Max (m/s)", "Wind Speed Min (m/s)", "Wind Speed Mean (m/s)",
}

// WorkbookWriter writes the summary report as an XLSX workbook next to the
// text report.
type WorkbookWriter struct {
	dir    string
	logger *slog.Logger
}

// NewWorkbookWriter creates a WorkbookWriter for dir.
func NewWorkbookWriter(dir string, logger *slog.Logger) *WorkbookWriter {
	return &WorkbookWriter{dir: dir, logger: logger}
}

// WorkbookName is the report file name with an .xlsx extension.
func WorkbookName(report domain.Report) string {
	return strings.TrimSuffix(report.FileName(), ".txt") + ".xlsx"
}

// WriteWorkbook writes the report rows to one sheet and returns the path.
// Statistics with no valid reading are left blank.
func (w *WorkbookWriter) WriteWorkbook(ctx context.Context, report domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return "", fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &workbookHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, "A1", "I1", bold); err != nil {
		return "", fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(reportSheet, "A", "I", 22); err != nil {
		return "", fmt.Errorf("set column width: %w", err)
	}

	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		values := []any{
			row.FileName, row.Missing, round2(row.Precipitation),
			stat(row.Tair.Max), stat(row.Tair.Min), stat(row.Tair.Mean),
			stat(row.Wspd.Max), stat(row.Wspd.Min), stat(row.Wspd.Mean),
		}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return "", fmt.Errorf("write row %s: %w", row.FileName, err)
		}
	}

	path := filepath.Join(w.dir, WorkbookName(report))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	w.logger.Debug("workbook written", "path", path, "days", len(report.Rows))
	return path, nil
}

// stat returns nil for NaN so the cell stays empty.
func stat(x float64) any {
	if math.IsNaN(x) {
		return nil
	}
	return round2(x)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
