package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
	"github.com/couchcryptid/station-qa-etl/internal/observability"
)

// maxLoggedProblems caps per-cell decode warnings; the rest are only counted.
const maxLoggedProblems = 10

// Output stage names, used as the "stage" metric label.
const (
	StageDays     = "day_files"
	StageReport   = "report"
	StageWorkbook = "workbook"
	StagePlot     = "plot"
)

// Extractor reads the raw telemetry for a run.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawBatch, error)
}

// Transformer turns a raw batch into the QA'd series.
type Transformer interface {
	Transform(ctx context.Context, batch domain.RawBatch) (Series, error)
}

// DayWriter writes one daily file and returns its path.
type DayWriter interface {
	WriteDay(ctx context.Context, day domain.DayFile) (string, error)
}

// ReportWriter writes the summary report and returns its path.
type ReportWriter interface {
	WriteReport(ctx context.Context, report domain.Report) (string, error)
}

// WorkbookWriter writes the summary report as a spreadsheet.
type WorkbookWriter interface {
	WriteWorkbook(ctx context.Context, report domain.Report) (string, error)
}

// PlotRenderer draws the wind chart.
type PlotRenderer interface {
	Render(ctx context.Context, records []domain.Record, start, end time.Time) (string, error)
}

// Outputs are the load stages. Days and Report are required; a nil Workbook
// or Plot disables that output.
type Outputs struct {
	Days     DayWriter
	Report   ReportWriter
	Workbook WorkbookWriter
	Plot     PlotRenderer
}

// Window is the configured run range and the data file it reads.
type Window struct {
	Input string
	Start time.Time
	End   time.Time
}

// Run states reported by Progress.
const (
	StatePending   = "pending"
	StateExtract   = "extract"
	StateTransform = "transform"
	StateExport    = "export"
	StateDone      = "done"
	StateFailed    = "failed"
)

// Progress is a snapshot of a run for status reporting.
type Progress struct {
	State string   `json:"state"`
	Files []string `json:"files"`
}

// Result describes a completed run.
type Result struct {
	Series Series
	Days   []domain.DayFile
	Report domain.Report
	Files  []string // every output written, in completion order
}

// Pipeline runs one extract, transform, export pass over a data file.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	outputs     Outputs
	window      Window
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool

	mu    sync.Mutex
	state string
	files []string
}

// New creates a Pipeline with the given stages and observability. A nil
// clock uses the real clock.
func New(e Extractor, t Transformer, out Outputs, w Window, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor:   e,
		transformer: t,
		outputs:     out,
		window:      w,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		state:       StatePending,
	}
}

// CheckReadiness returns nil once the QA'd series has been produced, or an
// error describing why the run is not there yet.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("quality-assured series not built yet")
	}
	return nil
}

// Progress returns the current state and the outputs written so far.
func (p *Pipeline) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Progress{State: p.state, Files: append([]string{}, p.files...)}
}

// Run reads, checks, and exports the data. A decode or transform error
// aborts before any output is written. Output stages run concurrently and
// independently: one failing does not stop or undo the others, and the first
// failure is returned after all have finished.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.clock.Now()
	p.logger.Info("pipeline started",
		"input", p.window.Input,
		"start", p.window.Start,
		"end", p.window.End,
	)
	p.metrics.PipelineRunning.Set(1)
	p.metrics.LastRunSuccess.Set(0)
	defer p.metrics.PipelineRunning.Set(0)

	p.setState(StateExtract)
	batch, err := p.extractor.Extract(ctx)
	if err != nil {
		p.setState(StateFailed)
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.recordDecode(batch)

	p.setState(StateTransform)
	series, err := p.transformer.Transform(ctx, batch)
	if err != nil {
		p.setState(StateFailed)
		return nil, fmt.Errorf("transform: %w", err)
	}
	p.recordSeries(series)
	p.ready.Store(true)
	p.setState(StateExport)

	days := domain.Partition(series.Records, p.window.Start, p.window.End)
	report := domain.Report{
		Input: p.window.Input,
		Start: p.window.Start,
		End:   p.window.End,
		Rows:  domain.SummarizeAll(days),
	}

	err = p.export(ctx, series.Records, days, report)
	elapsed := p.clock.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())

	res := &Result{Series: series, Days: days, Report: report, Files: p.Progress().Files}
	if err != nil {
		p.setState(StateFailed)
		p.logger.Error("pipeline finished with errors", "error", err, "files", len(res.Files), "duration", elapsed)
		return res, err
	}
	p.metrics.LastRunSuccess.Set(1)
	p.setState(StateDone)
	p.logger.Info("pipeline finished", "files", len(res.Files), "duration", elapsed)
	return res, nil
}

func (p *Pipeline) recordDecode(batch domain.RawBatch) {
	p.metrics.RowsDecoded.Add(float64(batch.Rows))
	p.metrics.DecodeErrors.Add(float64(len(batch.Problems)))
	for i, problem := range batch.Problems {
		if i == maxLoggedProblems {
			p.logger.Warn("further decode problems suppressed", "remaining", len(batch.Problems)-i)
			break
		}
		p.logger.Warn("decode problem, value treated as missing", "error", problem)
	}
	p.logger.Info("data file decoded",
		"rows", batch.Rows,
		"observations", len(batch.Observations),
		"problems", len(batch.Problems),
	)
}

func (p *Pipeline) recordSeries(s Series) {
	p.metrics.GridSlots.Set(float64(len(s.Records)))
	p.metrics.SlotsMatched.Add(float64(s.Merge.Matched))
	p.metrics.SlotsEmpty.Add(float64(s.Merge.Empty))
	p.metrics.DuplicateObservations.Add(float64(s.Merge.Duplicates))
	p.metrics.OffGridObservations.Add(float64(s.Merge.OffGrid))
	for v, counts := range s.QA {
		for st, n := range counts {
			p.metrics.QAOutcomes.WithLabelValues(string(v), st.String()).Add(float64(n))
		}
	}
	p.logger.Info("quality assurance complete",
		"slots", len(s.Records),
		"matched", s.Merge.Matched,
		"empty", s.Merge.Empty,
	)
}

func (p *Pipeline) export(ctx context.Context, records []domain.Record, days []domain.DayFile, report domain.Report) error {
	var g errgroup.Group

	g.Go(p.stage(ctx, StageDays, func(ctx context.Context) error {
		for _, day := range days {
			path, err := p.outputs.Days.WriteDay(ctx, day)
			if err != nil {
				return err
			}
			p.metrics.DayFilesWritten.Inc()
			p.addFile(path)
		}
		return nil
	}))
	g.Go(p.stage(ctx, StageReport, func(ctx context.Context) error {
		path, err := p.outputs.Report.WriteReport(ctx, report)
		if err != nil {
			return err
		}
		p.addFile(path)
		return nil
	}))
	if p.outputs.Workbook != nil {
		g.Go(p.stage(ctx, StageWorkbook, func(ctx context.Context) error {
			path, err := p.outputs.Workbook.WriteWorkbook(ctx, report)
			if err != nil {
				return err
			}
			p.addFile(path)
			return nil
		}))
	}
	if p.outputs.Plot != nil {
		g.Go(p.stage(ctx, StagePlot, func(ctx context.Context) error {
			path, err := p.outputs.Plot.Render(ctx, records, p.window.Start, p.window.End)
			if err != nil {
				return err
			}
			p.addFile(path)
			return nil
		}))
	}
	return g.Wait()
}

// stage wraps an output step with timing, logging, and error accounting.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) func() error {
	return func() error {
		start := p.clock.Now()
		err := fn(ctx)
		p.metrics.StageDuration.WithLabelValues(name).Observe(p.clock.Since(start).Seconds())
		if err != nil {
			p.metrics.OutputErrors.WithLabelValues(name).Inc()
			p.logger.Error("output stage failed", "stage", name, "error", err)
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

func (p *Pipeline) setState(s string) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pipeline) addFile(path string) {
	p.mu.Lock()
	p.files = append(p.files, path)
	p.mu.Unlock()
}
