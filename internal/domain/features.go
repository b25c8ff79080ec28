package domain

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/series"
)

// EnsureHourFeatures derives hour_of_day when it is absent, or when it is
// constant while crs_dep_time varies. A constant hour next to a constant
// source is left alone.
func EnsureHourFeatures(ds *Dataset) error {
	if !ds.Has(ColHourOfDay) {
		return RecomputeHour(ds)
	}
	if ds.isConstant(ColHourOfDay) && ds.Has(ColCRSDepTime) && !ds.isConstant(ColCRSDepTime) {
		return RecomputeHour(ds)
	}
	return nil
}

// RecomputeHour overwrites hour_of_day from crs_dep_time, or fills it with 0
// when the source column is absent.
func RecomputeHour(ds *Dataset) error {
	hours := make([]int, ds.Len())
	if ds.Has(ColCRSDepTime) {
		src := ds.Col(ColCRSDepTime)
		for i := range hours {
			hours[i] = GetHour(src.Elem(i))
		}
	}
	return ds.SetColumn(series.New(hours, series.Int, ColHourOfDay))
}

// EnrichFeatures derives hour_of_day, time_of_day, is_delayed and route.
// Each feature is derived only when its sources are present and the feature
// itself is not, so repeated calls leave the table unchanged.
func EnrichFeatures(ds *Dataset) error {
	if err := EnsureHourFeatures(ds); err != nil {
		return fmt.Errorf("hour_of_day: %w", err)
	}

	if ds.Has(ColHourOfDay) && !ds.Has(ColTimeOfDay) {
		labels := make([]string, ds.Len())
		for i, h := range ds.Floats(ColHourOfDay) {
			hour := 0
			if !math.IsNaN(h) {
				hour = int(h)
			}
			labels[i] = string(AssignTimeOfDay(hour))
		}
		if err := ds.SetColumn(series.New(labels, series.String, ColTimeOfDay)); err != nil {
			return err
		}
	}

	if ds.Has(ColArrDelay) && !ds.Has(ColIsDelayed) {
		delayed := make([]bool, ds.Len())
		for i, d := range ds.Floats(ColArrDelay) {
			delayed[i] = IsDelayed(d)
		}
		if err := ds.SetColumn(series.New(delayed, series.Bool, ColIsDelayed)); err != nil {
			return err
		}
	}

	if ds.Has(ColOrigin) && ds.Has(ColDest) && !ds.Has(ColRoute) {
		if err := ds.SetColumn(series.New(routes(ds), series.String, ColRoute)); err != nil {
			return err
		}
	}
	return nil
}

// IsDelayed applies the on-time threshold. NaN is not delayed.
func IsDelayed(arrDelay float64) bool {
	return !math.IsNaN(arrDelay) && arrDelay >= DelayedThreshold
}

// Route joins an origin and destination airport code.
func Route(origin, dest string) string {
	return origin + RouteSeparator + dest
}

func routes(ds *Dataset) []string {
	origins := ds.Texts(ColOrigin)
	dests := ds.Texts(ColDest)
	originNA := ds.Missing(ColOrigin)
	destNA := ds.Missing(ColDest)
	out := make([]string, ds.Len())
	for i := range out {
		if originNA[i] || destNA[i] {
			out[i] = "NaN"
			continue
		}
		out[i] = Route(origins[i], dests[i])
	}
	return out
}

// isConstant reports whether the column holds at most one distinct value.
func (d *Dataset) isConstant(name string) bool {
	seen := make(map[string]struct{}, 2)
	for _, v := range d.frame.Col(name).Records() {
		seen[v] = struct{}{}
		if len(seen) > 1 {
			return false
		}
	}
	return true
}
