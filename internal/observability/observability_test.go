package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("run started", "run_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run started", entry["msg"])
	assert.Equal(t, "abc", entry["run_id"])
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("grid built", "slots", 288)

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "slots=288")
}

func TestMetrics_RegisterPrivateRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.QAOutcomes.WithLabelValues("tair", "out_of_range").Add(3)
	m.DayFilesWritten.Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.QAOutcomes.WithLabelValues("tair", "out_of_range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DayFilesWritten))

	require.Error(t, m.Register(reg), "second registration must fail")
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.RowsDecoded.Add(288)
	m.LastRunSuccess.Set(1)

	path := filepath.Join(t.TempDir(), "stationqa.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "station_qa_rows_decoded_total 288")
	assert.Contains(t, string(data), "station_qa_last_run_success 1")
}
