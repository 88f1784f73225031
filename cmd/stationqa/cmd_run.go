package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/station-qa-etl/internal/adapter/export"
	httpadapter "github.com/couchcryptid/station-qa-etl/internal/adapter/http"
	"github.com/couchcryptid/station-qa-etl/internal/adapter/plot"
	"github.com/couchcryptid/station-qa-etl/internal/adapter/toa5"
	"github.com/couchcryptid/station-qa-etl/internal/config"
	"github.com/couchcryptid/station-qa-etl/internal/observability"
	"github.com/couchcryptid/station-qa-etl/internal/pipeline"
)

// runFlags are shared by run and check.
type runFlags struct {
	settings  string
	dataFile  string
	outputDir string
	envFile   string
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the QA pipeline over one data file",
	RunE:  runRun,
}

func init() {
	addRunFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.settings, "settings", "settings.yaml", "run settings YAML file")
	cmd.Flags().StringVar(&f.dataFile, "data-file", "", "raw data file (overrides data_file)")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "output directory (overrides output_file_path)")
	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "dotenv file with process settings")
}

// loadJob reads the settings file, applies flag overrides, and resolves it.
func loadJob(f runFlags) (*config.Job, error) {
	settings, err := config.LoadSettings(f.settings)
	if err != nil {
		return nil, err
	}
	if f.dataFile != "" {
		settings.DataFile = f.dataFile
	}
	if f.outputDir != "" {
		settings.OutputFilePath = f.outputDir
	}
	return settings.Resolve()
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(runOpts.envFile)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := observability.NewLogger(cfg).With("run_id", runID)

	job, err := loadJob(runOpts)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	p, err := newPipeline(job, logger, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, runID, p, prometheus.DefaultGatherer, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	_, runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics textfile write failed", "path", cfg.MetricsTextfile, "error", err)
		}
	}
	return runErr
}

func newPipeline(job *config.Job, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	tfm, err := pipeline.NewTransformer(job.Start, job.End, job.DuplicatePolicy, job.Limits, logger)
	if err != nil {
		return nil, fmt.Errorf("configure transform: %w", err)
	}

	out := pipeline.Outputs{
		Days:   export.NewDayWriter(job.OutputDir, logger),
		Report: export.NewReportWriter(job.OutputDir, logger),
	}
	if job.ReportXLSX {
		out.Workbook = export.NewWorkbookWriter(job.OutputDir, logger)
	}
	if job.PlotFile != "" {
		out.Plot = plot.NewRenderer(job.OutputDir, job.PlotFile, job.HistogramBins, logger)
	} else {
		logger.Info("wind plot disabled, wind_graph_name not set")
	}

	w := pipeline.Window{Input: job.DataFile, Start: job.Start, End: job.End}
	return pipeline.New(toa5.NewReader(job.DataFile, logger), tfm, out, w, logger, metrics, clockwork.NewRealClock()), nil
}
