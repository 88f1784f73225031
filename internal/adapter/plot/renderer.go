// Package plot renders the wind speed and gust chart: a time series of both
// variables above a histogram of gusts.
package plot

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

const (
	width  = 10 * vg.Inch
	height = 12 * vg.Inch

	windMax  = 3.0
	countMax = 200.0
)

var (
	speedColor = color.RGBA{G: 128, A: 255}
	gustColor  = color.RGBA{B: 153, A: 255}
)

// ErrNoBins is returned when the histogram bin count is not positive.
var ErrNoBins = errors.New("plot: histogram bins must be positive")

// Renderer writes the chart as a PNG.
type Renderer struct {
	dir    string
	name   string
	bins   int
	logger *slog.Logger
}

// NewRenderer creates a Renderer writing dir/name with bins histogram bins.
func NewRenderer(dir, name string, bins int, logger *slog.Logger) *Renderer {
	return &Renderer{dir: dir, name: name, bins: bins, logger: logger}
}

// Render draws the chart for records between start and end and returns the
// written path. Missing and out-of-range readings leave gaps in the series
// and are left out of the histogram.
func (r *Renderer) Render(ctx context.Context, records []domain.Record, start, end time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	series, err := SeriesPlot(records, start, end)
	if err != nil {
		return "", err
	}
	hist, err := HistogramPlot(records, r.bins)
	if err != nil {
		return "", err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
		PadY:      vg.Points(30),
	}
	canvases := plot.Align([][]*plot.Plot{{series}, {hist}}, tiles, dc)
	series.Draw(canvases[0][0])
	hist.Draw(canvases[1][0])

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(r.dir, r.name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", r.name, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode %s: %w", r.name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", r.name, err)
	}
	r.logger.Debug("wind plot written", "path", path, "records", len(records))
	return path, nil
}

// SeriesPlot builds the wind speed (dashed green) and gust (solid blue) time
// series. The x axis runs from start to one slot past end.
func SeriesPlot(records []domain.Record, start, end time.Time) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "NWC0 Wind Speed and Gust"
	p.X.Label.Text = "Time (Date and UTC hour)"
	p.Y.Label.Text = "Wind Speed (m/s)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02-2006\n15:04 Z", Time: plot.UnixTimeIn(time.UTC)}
	p.X.Min = float64(start.Unix())
	p.X.Max = float64(end.Add(domain.SampleInterval).Unix())
	p.Y.Min, p.Y.Max = 0, windMax
	p.Legend.Top = true
	p.Legend.Left = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = color.Black
	grid.Horizontal.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
	p.Add(grid)

	for _, s := range []struct {
		label  string
		get    func(domain.Record) domain.Value
		color  color.Color
		dashes []vg.Length
	}{
		{"Wind Speed", func(r domain.Record) domain.Value { return r.Wspd }, speedColor, []vg.Length{vg.Points(6), vg.Points(3)}},
		{"Wind Gust", func(r domain.Record) domain.Value { return r.Wmax }, gustColor, nil},
	} {
		var first *plotter.Line
		for _, seg := range Segments(records, s.get) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return nil, fmt.Errorf("%s series: %w", s.label, err)
			}
			line.Color = s.color
			line.Dashes = s.dashes
			p.Add(line)
			if first == nil {
				first = line
			}
		}
		if first != nil {
			p.Legend.Add(s.label, first)
		}
	}
	return p, nil
}

// HistogramPlot builds the gust histogram over valid WMAX readings.
func HistogramPlot(records []domain.Record, bins int) (*plot.Plot, error) {
	if bins <= 0 {
		return nil, ErrNoBins
	}
	p := plot.New()
	p.Title.Text = "Wind Gust Histogram"
	p.X.Label.Text = "Wind Gust (m/s)"
	p.Y.Label.Text = "Observations"
	p.X.Min, p.X.Max = 0, windMax
	p.Y.Min, p.Y.Max = 0, countMax

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
	p.Add(grid)

	gusts := make(plotter.Values, 0, len(records))
	for _, rec := range records {
		if x, ok := rec.Wmax.Float(); ok {
			gusts = append(gusts, x)
		}
	}
	if len(gusts) == 0 {
		return p, nil
	}
	h, err := plotter.NewHist(gusts, bins)
	if err != nil {
		return nil, fmt.Errorf("gust histogram: %w", err)
	}
	h.FillColor = gustColor
	h.LineStyle.Color = color.Black
	p.Add(h)
	return p, nil
}

// Segments splits a series into runs of consecutive valid readings so a gap
// in the data is a gap in the line.
func Segments(records []domain.Record, get func(domain.Record) domain.Value) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for _, rec := range records {
		y, ok := get(rec).Float()
		if !ok {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(rec.Timestamp.Unix()), Y: y})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
