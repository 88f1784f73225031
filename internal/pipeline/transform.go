package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

// Series is the QA'd output of the transform stage, one record per grid slot.
type Series struct {
	Records []domain.Record
	Merge   domain.MergeStats
	QA      domain.QAStats
}

// QATransformer implements Transformer: it aligns a raw batch to the sampling
// grid, derives wind chill, and applies the QA range checks.
type QATransformer struct {
	grid   []time.Time
	policy domain.DuplicatePolicy
	engine *domain.Engine
	logger *slog.Logger
}

// NewTransformer validates the run window and limits up front so a bad
// configuration fails before anything is read or written.
func NewTransformer(start, end time.Time, policy domain.DuplicatePolicy, limits domain.Limits, logger *slog.Logger) (*QATransformer, error) {
	grid, err := domain.BuildGrid(start, end)
	if err != nil {
		return nil, err
	}
	engine, err := domain.NewEngine(limits)
	if err != nil {
		return nil, err
	}
	return &QATransformer{
		grid:   grid,
		policy: policy,
		engine: engine,
		logger: logger,
	}, nil
}

// Slots returns the number of grid slots in the run window.
func (t *QATransformer) Slots() int {
	return len(t.grid)
}

func (t *QATransformer) Transform(ctx context.Context, batch domain.RawBatch) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}
	merged, ms := domain.Merge(t.grid, batch.Observations, t.policy)
	if ms.Duplicates > 0 {
		t.logger.Warn("duplicate timestamps in data file",
			"duplicates", ms.Duplicates,
			"policy", string(t.policy),
		)
	}
	if ms.OffGrid > 0 {
		t.logger.Warn("observations outside the sampling grid dropped", "count", ms.OffGrid)
	}

	records, qs := t.engine.Apply(merged)
	return Series{Records: records, Merge: ms, QA: qs}, nil
}
