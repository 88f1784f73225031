package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

var checkOpts runFlags

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a settings file without reading data or writing output",
	RunE: func(cmd *cobra.Command, _ []string) error {
		job, err := loadJob(checkOpts)
		if err != nil {
			return err
		}
		grid, err := domain.BuildGrid(job.Start, job.End)
		if err != nil {
			return err
		}
		days := domain.Days(job.Start, job.End)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "settings OK: %s\n", checkOpts.settings)
		fmt.Fprintf(out, "  data file:   %s\n", job.DataFile)
		fmt.Fprintf(out, "  output dir:  %s\n", job.OutputDir)
		fmt.Fprintf(out, "  range:       %s to %s (%d slots, %d day files)\n",
			job.Start.Format("2006-01-02 15:04"), job.End.Format("2006-01-02 15:04"), len(grid), len(days))
		fmt.Fprintf(out, "  report:      %s\n", domain.ReportFileName(job.Start, job.End))
		for _, v := range domain.QAVariables {
			b := job.Limits[v]
			fmt.Fprintf(out, "  %-5s        [%g, %g]\n", v, b.Low, b.High)
		}
		return nil
	},
}

func init() {
	addRunFlags(checkCmd, &checkOpts)
	rootCmd.AddCommand(checkCmd)
}
