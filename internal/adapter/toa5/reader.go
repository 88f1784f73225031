// Package toa5 decodes Campbell Scientific TOA5 tables written by the
// station's CR300 logger.
//
// A TOA5 file starts with an environment line ("TOA5", station, logger
// model, ...), then the column names, units, and processing rows, then data.
// Files with the environment line stripped are accepted too: the first row
// is then the header.
package toa5

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

// metadataRows follow the header: units, then processing (Smp, Avg, Tot, ...).
const metadataRows = 2

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

// columns maps header names to record fields.
var columns = map[string]domain.Variable{
	"RECORD": domain.VarRecord,
	"TAIR":   domain.VarTair,
	"RELH":   domain.VarRelh,
	"SRAD":   domain.VarSrad,
	"WSPD":   domain.VarWspd,
	"WMAX":   domain.VarWmax,
	"WDIR":   domain.VarWdir,
	"RAIN":   domain.VarRain,
	"BATV":   domain.VarBatv,
}

type column struct {
	index    int
	name     string
	variable domain.Variable
}

// ErrNoTimestamp is returned when the header has no TIMESTAMP column.
var ErrNoTimestamp = errors.New("toa5: header has no TIMESTAMP column")

// DecodeError describes a cell or row that could not be decoded. The cell is
// treated as missing; a row with a bad timestamp is dropped.
type DecodeError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: column %s: %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Reader decodes one telemetry file from disk.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads and decodes the whole file.
func (r *Reader) Extract(ctx context.Context) (domain.RawBatch, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	batch, err := Decode(ctx, f)
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("decode %s: %w", r.path, err)
	}
	batch.Source = r.path
	r.logger.Debug("data file decoded",
		"path", r.path,
		"rows", batch.Rows,
		"observations", len(batch.Observations),
		"problems", len(batch.Problems),
	)
	return batch, nil
}

// Decode reads a TOA5 table. Only a missing header or an unreadable stream is
// an error; bad cells become missing values and are listed in Problems.
func Decode(ctx context.Context, src io.Reader) (domain.RawBatch, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 && strings.EqualFold(strings.TrimSpace(header[0]), "TOA5") {
		if header, err = cr.Read(); err != nil {
			return domain.RawBatch{}, fmt.Errorf("read header: %w", err)
		}
	}

	tsCol := -1
	var fieldCols []column
	for i, name := range header {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "TIMESTAMP" {
			tsCol = i
			continue
		}
		if v, ok := columns[name]; ok {
			fieldCols = append(fieldCols, column{index: i, name: name, variable: v})
		}
	}
	if tsCol < 0 {
		return domain.RawBatch{}, ErrNoTimestamp
	}

	for i := 0; i < metadataRows; i++ {
		if _, err := cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return domain.RawBatch{}, nil
			}
			return domain.RawBatch{}, fmt.Errorf("read metadata rows: %w", err)
		}
	}

	var batch domain.RawBatch
	for {
		if batch.Rows%1024 == 0 && ctx.Err() != nil {
			return domain.RawBatch{}, ctx.Err()
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				batch.Rows++
				batch.Problems = append(batch.Problems, &DecodeError{Line: perr.Line, Column: "*", Err: perr.Err})
				continue
			}
			return domain.RawBatch{}, fmt.Errorf("read row: %w", err)
		}
		batch.Rows++
		line, _ := cr.FieldPos(0)

		obs, problems := decodeRow(row, line, tsCol, fieldCols)
		batch.Problems = append(batch.Problems, problems...)
		if obs != nil {
			batch.Observations = append(batch.Observations, *obs)
		}
	}
	return batch, nil
}

// decodeRow returns nil when the row has no usable timestamp.
func decodeRow(row []string, line, tsCol int, fieldCols []column) (*domain.RawObservation, []error) {
	var problems []error

	raw := cell(row, tsCol)
	ts, err := parseTimestamp(raw)
	if err != nil {
		return nil, []error{&DecodeError{Line: line, Column: "TIMESTAMP", Value: raw, Err: err}}
	}

	rec := domain.Record{Timestamp: ts}
	for _, col := range fieldCols {
		raw := cell(row, col.index)
		val, err := parseValue(raw)
		if err != nil {
			problems = append(problems, &DecodeError{Line: line, Column: col.name, Value: raw, Err: err})
		}
		rec.Set(col.variable, val)
	}
	return &domain.RawObservation{Timestamp: ts, Line: line, Fields: rec.Fields}, problems
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp")
}

// parseValue decodes one numeric cell. Blank and NAN cells are the logger's
// own missing markers and are not errors.
func parseValue(s string) (domain.Value, error) {
	if s == "" || strings.EqualFold(s, "NAN") {
		return domain.Missing(), nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Missing(), errors.New("not a number")
	}
	return domain.FromSentinel(x), nil
}
