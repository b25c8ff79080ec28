package domain

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

// GroupStat summarizes the flights sharing one grouping key.
type GroupStat struct {
	Key          string
	Label        string
	Flights      int
	MeanArrDelay float64 // NaN when no flight in the group has an arrival delay
	DelayRate    float64
}

// KeyFunc maps a row to its group. ok is false for rows that belong to no group.
type KeyFunc func(i int) (key, label string, ok bool)

// ColumnKey groups rows by the text value of a column. Missing values are skipped.
func ColumnKey(ds *Dataset, col string) KeyFunc {
	texts := ds.Texts(col)
	missing := ds.Missing(col)
	return func(i int) (string, string, bool) {
		if texts == nil || missing[i] {
			return "", "", false
		}
		return texts[i], texts[i], true
	}
}

// HourKey groups rows by hour_of_day, zero-padded so keys sort numerically.
func HourKey(ds *Dataset) KeyFunc {
	hours := ds.Floats(ColHourOfDay)
	return func(i int) (string, string, bool) {
		if hours == nil || math.IsNaN(hours[i]) {
			return "", "", false
		}
		k := fmt.Sprintf("%02d", int(hours[i]))
		return k, k, true
	}
}

// MonthKey groups rows by calendar month of the normalized flight date.
func MonthKey(ds *Dataset) KeyFunc {
	return dateKey(ds, func(t time.Time) (string, string) {
		return fmt.Sprintf("%02d", int(t.Month())), t.Month().String()[:3]
	})
}

// WeekdayKey groups rows by weekday of the normalized flight date, Monday first.
func WeekdayKey(ds *Dataset) KeyFunc {
	return dateKey(ds, func(t time.Time) (string, string) {
		wd := (int(t.Weekday()) + 6) % 7
		return fmt.Sprintf("%d", wd), t.Weekday().String()[:3]
	})
}

func dateKey(ds *Dataset, f func(time.Time) (string, string)) KeyFunc {
	dates := ds.Dates()
	return func(i int) (string, string, bool) {
		if dates == nil || dates[i].IsZero() {
			return "", "", false
		}
		k, l := f(dates[i])
		return k, l, true
	}
}

// StatsBy groups rows with key and returns one GroupStat per group, ordered by key.
func StatsBy(ds *Dataset, key KeyFunc) []GroupStat {
	type acc struct {
		label      string
		flights, n int
		sum        float64
		delayed    int
	}
	arr := ds.Floats(ColArrDelay)
	delayed := delayedFlags(ds, arr)

	groups := map[string]*acc{}
	for i := range ds.Len() {
		k, label, ok := key(i)
		if !ok {
			continue
		}
		g, found := groups[k]
		if !found {
			g = &acc{label: label}
			groups[k] = g
		}
		g.flights++
		if arr != nil && !math.IsNaN(arr[i]) {
			g.sum += arr[i]
			g.n++
		}
		if delayed[i] {
			g.delayed++
		}
	}

	out := make([]GroupStat, 0, len(groups))
	for k, g := range groups {
		mean := math.NaN()
		if g.n > 0 {
			mean = g.sum / float64(g.n)
		}
		out = append(out, GroupStat{
			Key:          k,
			Label:        g.label,
			Flights:      g.flights,
			MeanArrDelay: mean,
			DelayRate:    float64(g.delayed) / float64(g.flights),
		})
	}
	slices.SortFunc(out, func(a, b GroupStat) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

func delayedFlags(ds *Dataset, arr []float64) []bool {
	out := make([]bool, ds.Len())
	if ds.Has(ColIsDelayed) {
		col := ds.Col(ColIsDelayed)
		for i := range out {
			e := col.Elem(i)
			if e.IsNA() {
				continue
			}
			b, err := e.Bool()
			out[i] = err == nil && b
		}
		return out
	}
	for i := range out {
		out[i] = arr != nil && IsDelayed(arr[i])
	}
	return out
}

// WorstRoutes returns up to topN routes with at least minFlights flights,
// highest mean arrival delay first.
func WorstRoutes(ds *Dataset, minFlights, topN int) []GroupStat {
	if !ds.Has(ColRoute) {
		return nil
	}
	var eligible []GroupStat
	for _, g := range StatsBy(ds, ColumnKey(ds, ColRoute)) {
		if g.Flights >= minFlights && !math.IsNaN(g.MeanArrDelay) {
			eligible = append(eligible, g)
		}
	}
	slices.SortStableFunc(eligible, func(a, b GroupStat) int {
		return cmp.Compare(b.MeanArrDelay, a.MeanArrDelay)
	})
	if len(eligible) > topN {
		eligible = eligible[:topN]
	}
	return eligible
}

// CauseTotal is the total delay minutes attributed to one cause.
type CauseTotal struct {
	Cause   string
	Minutes float64
}

// CauseTotals sums each delay-cause column present in ds, in BTS order.
func CauseTotals(ds *Dataset) []CauseTotal {
	var out []CauseTotal
	for _, col := range DelayCauseColumns {
		vals := ds.Floats(col)
		if vals == nil {
			continue
		}
		var sum float64
		for _, v := range vals {
			if !math.IsNaN(v) {
				sum += v
			}
		}
		out = append(out, CauseTotal{Cause: col, Minutes: sum})
	}
	return out
}

// Count is the number of rows holding one value.
type Count struct {
	Key string
	N   int
}

// CountBy counts non-missing values of col, most frequent first.
func CountBy(ds *Dataset, col string) []Count {
	texts := ds.Texts(col)
	if texts == nil {
		return nil
	}
	missing := ds.Missing(col)
	counts := map[string]int{}
	for i, v := range texts {
		if !missing[i] {
			counts[v]++
		}
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, N: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.N, a.N); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// SampleRows draws k of n row positions with a seeded permutation and returns
// them in ascending order. All positions are returned when k >= n.
func SampleRows(n, k int, seed uint64) []int {
	k = max(k, 0)
	if k >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	r := rand.New(rand.NewPCG(seed, seed))
	idx := r.Perm(n)[:k]
	slices.Sort(idx)
	return idx
}
