package observability_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-eda/internal/observability"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := observability.ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "chart", "worst_routes")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "worst_routes", rec["chart"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	observability.NewLogger("debug", "text", &buf).Debug("rows removed", "removed", 3)
	assert.Contains(t, buf.String(), "removed=3")
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	a := observability.NewMetricsForTesting()
	b := observability.NewMetricsForTesting()

	a.RowsDropped.WithLabelValues("missing_delays").Add(2)
	assert.InDelta(t, 2.0, testutil.ToFloat64(a.RowsDropped.WithLabelValues("missing_delays")), 1e-9)
	assert.Zero(t, testutil.ToFloat64(b.RowsDropped.WithLabelValues("missing_delays")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := observability.NewMetricsForTesting()
	m.ChartsRendered.Add(12)
	m.PhaseDuration.WithLabelValues("clean").Observe(1.5)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "eda_charts_rendered_total 12")
	assert.Contains(t, string(data), `eda_phase_duration_seconds_count{phase="clean"} 1`)
}
