package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

const testSettingsYAML = `
start_datetime: "2023-01-01 00:00"
end_datetime: "2023-01-07 23:55"
data_file: data/NWC0_raw.dat
output_file_path: out/
wind_histogram_bins: 20
wind_graph_name: NWC0_wind.png
variable:
  tair:
    qa:
      low_limit: -40
      high_limit: 50
  relh:
    qa:
      low_limit: 0
      high_limit: 100
  srad:
    qa:
      low_limit: 0
      high_limit: 1500
  wspd:
    qa:
      low_limit: 0
      high_limit: 40
  wmax:
    qa:
      low_limit: 0
      high_limit: 60
  chil:
    qa:
      low_limit: -60
      high_limit: 50
`

func resolveYAML(t *testing.T, doc string) (*Job, error) {
	t.Helper()
	s, err := ParseSettings([]byte(doc))
	require.NoError(t, err)
	return s.Resolve()
}

func requireConfigError(t *testing.T, err error, field string) {
	t.Helper()
	var cerr *domain.ConfigError
	require.True(t, errors.As(err, &cerr), "want ConfigError, got %v", err)
	assert.Equal(t, field, cerr.Field)
}

func TestResolve_Valid(t *testing.T) {
	job, err := resolveYAML(t, testSettingsYAML)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), job.Start)
	assert.Equal(t, time.Date(2023, 1, 7, 23, 55, 0, 0, time.UTC), job.End)
	assert.Equal(t, "data/NWC0_raw.dat", job.DataFile)
	assert.Equal(t, "out/", job.OutputDir)
	assert.Equal(t, 20, job.HistogramBins)
	assert.Equal(t, "NWC0_wind.png", job.PlotFile)
	assert.Equal(t, domain.KeepFirst, job.DuplicatePolicy)
	assert.False(t, job.ReportXLSX)
	assert.Equal(t, domain.Bounds{Low: -40, High: 50}, job.Limits[domain.VarTair])
	assert.Equal(t, domain.Bounds{Low: -60, High: 50}, job.Limits[domain.VarChil])
	assert.Len(t, job.Limits, 6)
}

func TestResolve_OptionalFields(t *testing.T) {
	doc := testSettingsYAML + "duplicate_policy: last\nreport_xlsx: true\n"
	doc = strings.Replace(doc, "output_file_path: out/\n", "", 1)
	job, err := resolveYAML(t, doc)
	require.NoError(t, err)

	assert.Equal(t, domain.KeepLast, job.DuplicatePolicy)
	assert.True(t, job.ReportXLSX)
	assert.Equal(t, ".", job.OutputDir)
}

func TestResolve_NoPlot(t *testing.T) {
	doc := strings.Replace(testSettingsYAML, "wind_graph_name: NWC0_wind.png\n", "", 1)
	doc = strings.Replace(doc, "wind_histogram_bins: 20\n", "", 1)
	job, err := resolveYAML(t, doc)
	require.NoError(t, err)
	assert.Empty(t, job.PlotFile)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		old   string
		new   string
		field string
	}{
		{"missing data file", "data_file: data/NWC0_raw.dat\n", "", "data_file"},
		{"missing start", `start_datetime: "2023-01-01 00:00"` + "\n", "", "start_datetime"},
		{"bad start format", "2023-01-01 00:00", "01/01/2023", "start_datetime"},
		{"inverted range", "2023-01-07 23:55", "2022-12-31 00:00", "start_datetime"},
		{"unaligned start", "2023-01-01 00:00", "2023-01-01 00:02", "start_datetime"},
		{"bins required with plot", "wind_histogram_bins: 20\n", "", "wind_histogram_bins"},
		{"negative bins", "wind_histogram_bins: 20", "wind_histogram_bins: -1", "wind_histogram_bins"},
		{"unknown duplicate policy", "data_file:", "duplicate_policy: mean\ndata_file:", "duplicate_policy"},
		{"missing high limit", "      high_limit: 60\n", "", "variable[wmax].qa.high_limit"},
		{"missing variable", "  chil:\n    qa:\n      low_limit: -60\n      high_limit: 50\n", "", "variable"},
		{"inverted limits", "      low_limit: -40\n      high_limit: 50\n", "      low_limit: 50\n      high_limit: -40\n", "variable.tair.qa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(testSettingsYAML, tt.old, tt.new, 1)
			require.NotEqual(t, testSettingsYAML, doc, "replacement did not apply")
			_, err := resolveYAML(t, doc)
			requireConfigError(t, err, tt.field)
		})
	}
}

func TestParseSettings_Malformed(t *testing.T) {
	_, err := ParseSettings([]byte("variable: [unterminated"))
	var cerr *domain.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), "parse settings")
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSettingsYAML), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "data/NWC0_raw.dat", s.DataFile)

	_, err = LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
