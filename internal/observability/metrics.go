package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "station_qa"

// Metrics holds the Prometheus counters, histograms, and gauges for a QA run.
type Metrics struct {
	RowsDecoded     prometheus.Counter
	DecodeErrors    prometheus.Counter
	GridSlots       prometheus.Gauge
	PipelineRunning prometheus.Gauge

	// Merge outcomes.
	SlotsMatched          prometheus.Counter
	SlotsEmpty            prometheus.Counter
	DuplicateObservations prometheus.Counter
	OffGridObservations   prometheus.Counter

	QAOutcomes *prometheus.CounterVec // labels: variable, status={valid,missing,out_of_range}

	// Outputs.
	DayFilesWritten prometheus.Counter
	OutputErrors    *prometheus.CounterVec   // labels: stage
	StageDuration   *prometheus.HistogramVec // labels: stage
	RunDuration     prometheus.Histogram
	LastRunSuccess  prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds the metrics to reg. Used for a private registry, e.g. when
// writing a textfile.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_decoded_total",
			Help:      "Raw telemetry rows decoded from the data file.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Raw cells or rows that could not be decoded and were treated as missing.",
		}),
		GridSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grid_slots",
			Help:      "Expected 5-minute slots in the configured range.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is active, 0 otherwise.",
		}),
		SlotsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_matched_total",
			Help:      "Grid slots filled from a raw observation.",
		}),
		SlotsEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_empty_total",
			Help:      "Grid slots with no raw observation.",
		}),
		DuplicateObservations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_observations_total",
			Help:      "Raw observations discarded because another row had the same timestamp.",
		}),
		OffGridObservations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "off_grid_observations_total",
			Help:      "Raw observations whose timestamp is not a grid slot.",
		}),
		QAOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qa_outcomes_total",
			Help:      "QA results by variable and status.",
		}, []string{"variable", "status"}),
		DayFilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_files_written_total",
			Help:      "Daily QA'd files written.",
		}),
		OutputErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_errors_total",
			Help:      "Output stage failures by stage.",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each output stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run wrote every output, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsDecoded,
		m.DecodeErrors,
		m.GridSlots,
		m.PipelineRunning,
		m.SlotsMatched,
		m.SlotsEmpty,
		m.DuplicateObservations,
		m.OffGridObservations,
		m.QAOutcomes,
		m.DayFilesWritten,
		m.OutputErrors,
		m.StageDuration,
		m.RunDuration,
		m.LastRunSuccess,
	}
}

// WriteTextfile writes the current metric values to path in Prometheus text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
