package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for a pipeline run.
// Every Metrics owns its registry so that runs and tests never share state.
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded  *prometheus.CounterVec // labels: source={raw,cleaned,sample,cancellations}
	RowsDropped *prometheus.CounterVec // labels: reason={missing_delays,cancelled_or_diverted,incomplete_core_fields}
	RowsWritten *prometheus.CounterVec // labels: artifact={cleaned,cancellations,parquet,sample}

	PhaseDuration *prometheus.HistogramVec // labels: phase

	ChartsRendered prometheus.Counter
	ChartsSkipped  *prometheus.CounterVec // labels: chart
}

// NewMetrics creates all pipeline metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eda",
			Name:      "rows_loaded_total",
			Help:      "Rows read from CSV input by source file.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eda",
			Name:      "rows_dropped_total",
			Help:      "Rows removed during cleaning by reason.",
		}, []string{"reason"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eda",
			Name:      "rows_written_total",
			Help:      "Rows persisted by output artifact.",
		}, []string{"artifact"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eda",
			Name:      "phase_duration_seconds",
			Help:      "Wall time of each pipeline phase.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"phase"}),
		ChartsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eda",
			Name:      "charts_rendered_total",
			Help:      "Chart images written.",
		}),
		ChartsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eda",
			Name:      "charts_skipped_total",
			Help:      "Charts skipped for lack of data or a render failure.",
		}, []string{"chart"}),
	}

	m.Registry.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.RowsWritten,
		m.PhaseDuration,
		m.ChartsRendered,
		m.ChartsSkipped,
	)

	return m
}

// NewMetricsForTesting returns Metrics on an isolated registry.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format, for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
