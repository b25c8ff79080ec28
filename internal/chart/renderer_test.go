package chart_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/csvfile"
	"github.com/couchcryptid/flight-delay-eda/internal/chart"
	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
)

const header = "fl_date,op_unique_carrier,origin,dest,crs_dep_time,dep_time,arr_time,dep_delay,arr_delay,distance," +
	"cancelled,diverted,cancellation_code,carrier_delay,weather_delay,nas_delay,security_delay,late_aircraft_delay\n"

var carriers = []string{"AA", "DL", "UA", "WN"}

// cleanedFixture builds n operated flights, each on its own route.
func cleanedFixture(t *testing.T, n int) *domain.Dataset {
	t.Helper()
	var b strings.Builder
	b.WriteString(header)
	for i := range n {
		dep := i*3 - 20
		arr := i*4 - 30
		fmt.Fprintf(&b, "2024-%02d-%02d,%s,O%02d,D%02d,%04d,%04d,%04d,%d,%d,%d,0,0,%s,%d,0,%d,0,0\n",
			1+i%3, 1+i%28, carriers[i%len(carriers)], i, i,
			(i%24)*100+5, (i%24)*100+10, ((i+2)%24)*100, dep, arr, 200+i*10,
			domain.NotCancelled, max(arr, 0), i%5)
	}
	ds, err := csvfile.Read(strings.NewReader(b.String()))
	require.NoError(t, err)
	_, err = domain.NormalizeDates(ds)
	require.NoError(t, err)
	require.NoError(t, domain.EnrichFeatures(ds))
	return ds
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Data: config.DataConfig{
			RawFile:     filepath.Join(dir, "raw.csv"),
			CleanedFile: filepath.Join(dir, "cleaned.csv"),
			SampleFile:  filepath.Join(dir, "sample.csv"),
			SampleRows:  10,
			SampleSeed:  7,
		},
		Plots: config.PlotsConfig{
			Dir:               filepath.Join(dir, "plots"),
			ScatterSampleSize: 20,
			RouteMinFlights:   100,
			RouteTopN:         10,
			DelayLower:        -60,
			DelayUpper:        180,
			WidthIn:           4,
			HeightIn:          3,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
		Metrics: config.MetricsConfig{Textfile: "metrics.prom"},
	}
}

func newRenderer(cfg *config.Config, m *observability.Metrics) *chart.Renderer {
	return chart.NewRenderer(cfg, slog.New(slog.DiscardHandler), m)
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestRender_WritesChartBattery(t *testing.T) {
	cfg := newTestConfig(t)
	metrics := observability.NewMetricsForTesting()

	paths, err := newRenderer(cfg, metrics).Render(context.Background(), cleanedFixture(t, 48))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(paths), 10)
	assert.Len(t, paths, 12)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
		assert.Equal(t, cfg.Plots.Dir, filepath.Dir(p))
	}
	assert.NotContains(t, names(paths), "worst_routes.png")
	assert.NotContains(t, names(paths), "cancellation_reasons.png")
	assert.Contains(t, names(paths), "arr_delay_hist.png")
	assert.Contains(t, names(paths), "dep_vs_arr_scatter.png")

	assert.InDelta(t, 12.0, testutil.ToFloat64(metrics.ChartsRendered), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ChartsSkipped.WithLabelValues("worst_routes")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ChartsSkipped.WithLabelValues("cancellation_reasons")), 1e-9)
}

func TestRender_WorstRoutesWhenEligible(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Plots.RouteMinFlights = 1
	cfg.Plots.RouteTopN = 5

	paths, err := newRenderer(cfg, observability.NewMetricsForTesting()).Render(context.Background(), cleanedFixture(t, 24))
	require.NoError(t, err)
	assert.Contains(t, names(paths), "worst_routes.png")
}

func TestRender_CancellationSources(t *testing.T) {
	cancelled := header +
		"2024-01-02,AA,JFK,LAX,0900,,,,,2475,1,0,A,,,,,\n" +
		"2024-01-03,DL,ATL,ORD,1000,,,,,606,1,0,B,,,,,\n" +
		"2024-01-04,UA,SFO,DEN,1100,1105,1300,5,10,967,0,1,,,,,,\n"

	tests := []struct {
		name  string
		setup func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "cancellations file",
			setup: func(t *testing.T, cfg *config.Config) {
				writeFile(t, csvfile.CancellationsPath(cfg.Data.CleanedFile), cancelled)
			},
		},
		{
			name: "raw file",
			setup: func(t *testing.T, cfg *config.Config) {
				writeFile(t, cfg.Data.RawFile, cancelled)
			},
		},
		{
			name: "side file without codes falls through to raw",
			setup: func(t *testing.T, cfg *config.Config) {
				writeFile(t, csvfile.CancellationsPath(cfg.Data.CleanedFile),
					header+"2024-01-04,UA,SFO,DEN,1100,1105,1300,5,10,967,0,1,Not_Cancelled,0,0,0,0,0\n")
				writeFile(t, cfg.Data.RawFile, cancelled)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			tt.setup(t, cfg)

			paths, err := newRenderer(cfg, observability.NewMetricsForTesting()).Render(context.Background(), cleanedFixture(t, 12))
			require.NoError(t, err)
			assert.Contains(t, names(paths), "cancellation_reasons.png")
		})
	}
}

func TestRender_EmptyTableDoesNotFail(t *testing.T) {
	cfg := newTestConfig(t)
	ds, err := csvfile.Read(strings.NewReader(header))
	require.NoError(t, err)
	_, err = domain.NormalizeDates(ds)
	require.NoError(t, err)
	require.NoError(t, domain.EnrichFeatures(ds))
	metrics := observability.NewMetricsForTesting()

	paths, err := newRenderer(cfg, metrics).Render(context.Background(), ds)
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.Zero(t, testutil.ToFloat64(metrics.ChartsRendered))
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ChartsSkipped.WithLabelValues("arr_delay_hist")), 1e-9)
}

func TestRender_SummaryWorkbook(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Plots.SummaryWorkbook = "summary.xlsx"

	_, err := newRenderer(cfg, observability.NewMetricsForTesting()).Render(context.Background(), cleanedFixture(t, 12))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.Plots.Dir, "summary.xlsx"))
	assert.NoError(t, err)
}

func TestRender_StopsOnCancelledContext(t *testing.T) {
	cfg := newTestConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := newRenderer(cfg, observability.NewMetricsForTesting()).Render(ctx, cleanedFixture(t, 12))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, paths)
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}
