// Command stationqa quality-checks a station's raw telemetry file and writes
// daily QA'd files, a summary report, and an optional wind chart.
//
// Usage:
//
//	stationqa run --settings settings.yaml [--data-file raw.dat] [--output-dir out/]
//	stationqa check --settings settings.yaml
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stationqa",
	Short: "Quality-assure NWC0 station telemetry",
	Long: `stationqa aligns raw 5-minute station telemetry to a complete time grid,
derives wind chill, applies per-variable range checks, and exports one file
per calendar day plus a summary statistics report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("stationqa failed", "error", err)
		os.Exit(1)
	}
}
