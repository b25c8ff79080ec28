package chart

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

const histogramBins = 60

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

// clip clamps v into [lo, hi].
func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (r *Renderer) delayHistogram(col, title string) func(*domain.Dataset) (*plot.Plot, error) {
	return func(ds *domain.Dataset) (*plot.Plot, error) {
		var vals plotter.Values
		for _, v := range ds.Floats(col) {
			if finite(v) {
				vals = append(vals, clip(v, r.plots.DelayLower, r.plots.DelayUpper))
			}
		}
		if len(vals) == 0 {
			return nil, errNoData
		}
		hist, err := plotter.NewHist(vals, histogramBins)
		if err != nil {
			return nil, err
		}
		hist.FillColor = plotutil.Color(0)

		p := newPlot(title, "Delay (min)", "Flights")
		p.Add(hist)
		return p, nil
	}
}

// bars draws one bar per group. Groups whose value is not finite are left out.
func bars(title, yLabel string, stats []domain.GroupStat, value func(domain.GroupStat) float64) (*plot.Plot, error) {
	var (
		vals   plotter.Values
		labels []string
	)
	for _, g := range stats {
		v := value(g)
		if !finite(v) {
			continue
		}
		vals = append(vals, v)
		labels = append(labels, g.Label)
	}
	if len(vals) == 0 {
		return nil, errNoData
	}
	bc, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return nil, err
	}
	bc.Color = plotutil.Color(0)
	bc.LineStyle.Width = 0

	p := newPlot(title, "", yLabel)
	p.Add(bc)
	p.NominalX(labels...)
	return p, nil
}

// line draws the groups as a connected series, x taken from xOf.
func line(title, xLabel, yLabel string, stats []domain.GroupStat, xOf func(int, domain.GroupStat) float64, value func(domain.GroupStat) float64) (*plot.Plot, error) {
	var pts plotter.XYs
	for i, g := range stats {
		v := value(g)
		if !finite(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: xOf(i, g), Y: v})
	}
	if len(pts) == 0 {
		return nil, errNoData
	}
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	l.Color = plotutil.Color(0)
	s.Color = plotutil.Color(0)

	p := newPlot(title, xLabel, yLabel)
	p.Add(l, s)
	return p, nil
}

func meanDelay(g domain.GroupStat) float64 { return g.MeanArrDelay }
func delayRate(g domain.GroupStat) float64 { return g.DelayRate * 100 }
func flights(g domain.GroupStat) float64 { return float64(g.Flights) }

func (r *Renderer) carrierMeanDelay(ds *domain.Dataset) (*plot.Plot, error) {
	return bars("Mean arrival delay by carrier", "Minutes",
		domain.StatsBy(ds, domain.ColumnKey(ds, domain.ColCarrier)), meanDelay)
}

func (r *Renderer) carrierDelayRate(ds *domain.Dataset) (*plot.Plot, error) {
	return bars("Delayed flights by carrier", "Delayed (%)",
		domain.StatsBy(ds, domain.ColumnKey(ds, domain.ColCarrier)), delayRate)
}

func (r *Renderer) hourMeanDelay(ds *domain.Dataset) (*plot.Plot, error) {
	hourOf := func(_ int, g domain.GroupStat) float64 {
		h, _ := strconv.Atoi(g.Key)
		return float64(h)
	}
	p, err := line("Mean arrival delay by scheduled departure hour", "Hour", "Minutes",
		domain.StatsBy(ds, domain.HourKey(ds)), hourOf, meanDelay)
	if err != nil {
		return nil, err
	}
	p.X.Min, p.X.Max = 0, 23
	return p, nil
}

func (r *Renderer) timeOfDayDelayRate(ds *domain.Dataset) (*plot.Plot, error) {
	stats := domain.StatsBy(ds, domain.ColumnKey(ds, domain.ColTimeOfDay))
	slices.SortStableFunc(stats, func(a, b domain.GroupStat) int {
		return timeOfDayRank(a.Key) - timeOfDayRank(b.Key)
	})
	return bars("Delayed flights by time of day", "Delayed (%)", stats, delayRate)
}

// timeOfDayRank orders labels from morning to night; unknown labels go last.
func timeOfDayRank(label string) int {
	if i := slices.Index(domain.TimesOfDay, domain.TimeOfDay(label)); i >= 0 {
		return i
	}
	return len(domain.TimesOfDay)
}

func (r *Renderer) monthlyFlights(ds *domain.Dataset) (*plot.Plot, error) {
	return bars("Flights per month", "Flights", domain.StatsBy(ds, domain.MonthKey(ds)), flights)
}

func (r *Renderer) monthlyMeanDelay(ds *domain.Dataset) (*plot.Plot, error) {
	stats := domain.StatsBy(ds, domain.MonthKey(ds))
	monthOf := func(_ int, g domain.GroupStat) float64 {
		m, _ := strconv.Atoi(g.Key)
		return float64(m)
	}
	p, err := line("Mean arrival delay by month", "Month", "Minutes", stats, monthOf, meanDelay)
	if err != nil {
		return nil, err
	}
	p.X.Tick.Marker = monthTicks(stats)
	return p, nil
}

// monthTicks labels the month axis with the abbreviations of the months present.
func monthTicks(stats []domain.GroupStat) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 0, len(stats))
	for _, g := range stats {
		m, _ := strconv.Atoi(g.Key)
		ticks = append(ticks, plot.Tick{Value: float64(m), Label: g.Label})
	}
	return ticks
}

func (r *Renderer) weekdayMeanDelay(ds *domain.Dataset) (*plot.Plot, error) {
	return bars("Mean arrival delay by weekday", "Minutes", domain.StatsBy(ds, domain.WeekdayKey(ds)), meanDelay)
}

// scatter plots y against x for rows where both are finite, sampled down to
// the configured size.
func (r *Renderer) scatter(title, xLabel string, xs, ys []float64, clipX bool) (*plot.Plot, error) {
	if xs == nil || ys == nil {
		return nil, errNoData
	}
	var pts plotter.XYs
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		x := xs[i]
		if clipX {
			x = clip(x, r.plots.DelayLower, r.plots.DelayUpper)
		}
		pts = append(pts, plotter.XY{X: x, Y: clip(ys[i], r.plots.DelayLower, r.plots.DelayUpper)})
	}
	if len(pts) == 0 {
		return nil, errNoData
	}
	idx := domain.SampleRows(len(pts), r.plots.ScatterSampleSize, r.data.SampleSeed)
	sampled := make(plotter.XYs, len(idx))
	for k, i := range idx {
		sampled[k] = pts[i]
	}

	s, err := plotter.NewScatter(sampled)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = plotutil.Color(0)
	s.GlyphStyle.Radius = vg.Points(1)

	p := newPlot(title, xLabel, "Arrival delay (min)")
	p.Add(s)
	return p, nil
}

func (r *Renderer) delayScatter(ds *domain.Dataset) (*plot.Plot, error) {
	return r.scatter("Departure vs arrival delay", "Departure delay (min)",
		ds.Floats(domain.ColDepDelay), ds.Floats(domain.ColArrDelay), true)
}

func (r *Renderer) distanceScatter(ds *domain.Dataset) (*plot.Plot, error) {
	return r.scatter("Distance vs arrival delay", "Distance (mi)",
		ds.Floats(domain.ColDistance), ds.Floats(domain.ColArrDelay), false)
}

func (r *Renderer) causeTotals(ds *domain.Dataset) (*plot.Plot, error) {
	var (
		stats []domain.GroupStat
		total float64
	)
	for _, c := range domain.CauseTotals(ds) {
		label := strings.TrimSuffix(c.Cause, "_delay")
		stats = append(stats, domain.GroupStat{Key: c.Cause, Label: label, MeanArrDelay: c.Minutes})
		total += c.Minutes
	}
	if total <= 0 {
		return nil, errNoData
	}
	return bars("Total delay minutes by cause", "Minutes", stats, meanDelay)
}

func (r *Renderer) worstRoutes(ds *domain.Dataset) (*plot.Plot, error) {
	routes := domain.WorstRoutes(ds, r.plots.RouteMinFlights, r.plots.RouteTopN)
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no route has %d or more flights", errNoData, r.plots.RouteMinFlights)
	}
	vals := make(plotter.Values, len(routes))
	labels := make([]string, len(routes))
	// Worst route on top.
	for i, g := range routes {
		j := len(routes) - 1 - i
		vals[j] = g.MeanArrDelay
		labels[j] = g.Label
	}
	bc, err := plotter.NewBarChart(vals, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bc.Horizontal = true
	bc.Color = plotutil.Color(1)
	bc.LineStyle.Width = 0

	p := newPlot(fmt.Sprintf("Worst %d routes by mean arrival delay", len(routes)), "Minutes", "")
	p.Add(bc)
	p.NominalY(labels...)
	return p, nil
}

func (r *Renderer) cancellationReasons(ds *domain.Dataset) (*plot.Plot, error) {
	counts, source := r.cancellationCounts(ds)
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no cancelled flights in any source", errNoData)
	}
	r.logger.Info("cancellation reasons", "source", source, "codes", len(counts))

	stats := make([]domain.GroupStat, len(counts))
	for i, c := range counts {
		stats[i] = domain.GroupStat{Key: c.Key, Label: domain.CancellationReason(c.Key), Flights: c.N}
	}
	return bars("Cancellations by reason", "Flights", stats, flights)
}
