// Package chart renders the delay analysis charts as PNG files.
//
// Every chart is independent: one that has no data or fails to draw is
// logged and counted as skipped, and the rest are still written.
package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/xlsx"
	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
)

// errNoData marks a chart whose source is empty.
var errNoData = errors.New("no data to plot")

// Renderer draws the chart battery into the configured plots directory.
type Renderer struct {
	plots    config.PlotsConfig
	data     config.DataConfig
	workbook string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewRenderer creates a Renderer.
func NewRenderer(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	return &Renderer{
		plots:    cfg.Plots,
		data:     cfg.Data,
		workbook: cfg.SummaryWorkbookPath(),
		logger:   logger,
		metrics:  metrics,
	}
}

type chartDef struct {
	file  string
	build func(ds *domain.Dataset) (*plot.Plot, error)
}

func (r *Renderer) charts() []chartDef {
	return []chartDef{
		{"arr_delay_hist.png", r.delayHistogram(domain.ColArrDelay, "Arrival delay distribution")},
		{"dep_delay_hist.png", r.delayHistogram(domain.ColDepDelay, "Departure delay distribution")},
		{"carrier_mean_arr_delay.png", r.carrierMeanDelay},
		{"carrier_delay_rate.png", r.carrierDelayRate},
		{"hour_mean_arr_delay.png", r.hourMeanDelay},
		{"time_of_day_delay_rate.png", r.timeOfDayDelayRate},
		{"monthly_flights.png", r.monthlyFlights},
		{"monthly_mean_arr_delay.png", r.monthlyMeanDelay},
		{"weekday_mean_arr_delay.png", r.weekdayMeanDelay},
		{"dep_vs_arr_scatter.png", r.delayScatter},
		{"distance_vs_arr_scatter.png", r.distanceScatter},
		{"delay_cause_totals.png", r.causeTotals},
		{"worst_routes.png", r.worstRoutes},
		{"cancellation_reasons.png", r.cancellationReasons},
	}
}

// Render writes every chart it can draw from cleaned and returns their paths.
// It fails only when the output directory or the summary workbook cannot be
// written, or when ctx is done.
func (r *Renderer) Render(ctx context.Context, cleaned *domain.Dataset) ([]string, error) {
	if err := os.MkdirAll(r.plots.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.plots.Dir, err)
	}

	w := vg.Length(r.plots.WidthIn) * vg.Inch
	h := vg.Length(r.plots.HeightIn) * vg.Inch

	var written []string
	for _, c := range r.charts() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(r.plots.Dir, c.file)
		if err := r.draw(c, cleaned, w, h, path); err != nil {
			r.skip(c.file, err)
			continue
		}
		written = append(written, path)
		r.metrics.ChartsRendered.Inc()
		r.logger.Debug("chart written", "path", path)
	}

	if r.workbook != "" {
		if err := xlsx.WriteSummary(r.workbook,
			xlsx.Sheet{Name: "Carriers", Stats: domain.StatsBy(cleaned, domain.ColumnKey(cleaned, domain.ColCarrier))},
			xlsx.Sheet{Name: "Hours", Stats: domain.StatsBy(cleaned, domain.HourKey(cleaned))},
		); err != nil {
			return written, fmt.Errorf("summary workbook: %w", err)
		}
		r.logger.Info("summary workbook written", "path", r.workbook)
	}

	r.logger.Info("charts rendered", "dir", r.plots.Dir, "written", len(written))
	return written, nil
}

// draw builds and saves one chart. A panic inside the plotting library is
// reported as an error so one bad chart cannot abort the battery.
func (r *Renderer) draw(c chartDef, ds *domain.Dataset, w, h vg.Length, path string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render panic: %v", p)
		}
	}()
	p, err := c.build(ds)
	if err != nil {
		return err
	}
	return p.Save(w, h, path)
}

func (r *Renderer) skip(file string, err error) {
	name := strings.TrimSuffix(file, filepath.Ext(file))
	r.metrics.ChartsSkipped.WithLabelValues(name).Inc()
	r.logger.Warn("chart skipped", "chart", name, "reason", err)
}
