// Package parquet exports the cleaned flight table in Parquet format.
package parquet

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

// FlightRow is the Parquet schema of a cleaned flight.
type FlightRow struct {
	FlightDate        string   `parquet:"fl_date"`
	Carrier           string   `parquet:"op_unique_carrier"`
	Origin            string   `parquet:"origin"`
	Dest              string   `parquet:"dest"`
	Route             string   `parquet:"route"`
	CRSDepTime        string   `parquet:"crs_dep_time"`
	HourOfDay         int32    `parquet:"hour_of_day"`
	TimeOfDay         string   `parquet:"time_of_day"`
	ArrDelay          *float64 `parquet:"arr_delay,optional"`
	DepDelay          *float64 `parquet:"dep_delay,optional"`
	Distance          *float64 `parquet:"distance,optional"`
	IsDelayed         bool     `parquet:"is_delayed"`
	CancellationCode  string   `parquet:"cancellation_code"`
	CarrierDelay      float64  `parquet:"carrier_delay"`
	WeatherDelay      float64  `parquet:"weather_delay"`
	NASDelay          float64  `parquet:"nas_delay"`
	SecurityDelay     float64  `parquet:"security_delay"`
	LateAircraftDelay float64  `parquet:"late_aircraft_delay"`
}

const batchSize = 10_000

// WriteCleaned writes ds to path with Snappy compression and returns the
// number of rows written. Columns absent from ds are written as zero values.
func WriteCleaned(path string, ds *domain.Dataset) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := parquet.NewGenericWriter[FlightRow](f, parquet.Compression(&parquet.Snappy))
	rows := Rows(ds)
	written := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		n, err := w.Write(rows[start:end])
		written += n
		if err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", path, err)
	}
	return written, f.Close()
}

// Rows converts ds to Parquet rows.
func Rows(ds *domain.Dataset) []FlightRow {
	n := ds.Len()
	text := func(col string) []string {
		if v := ds.Texts(col); v != nil {
			return v
		}
		return make([]string, n)
	}
	num := func(col string) []float64 {
		if v := ds.Floats(col); v != nil {
			return v
		}
		out := make([]float64, n)
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	dates, carriers := text(domain.ColFlightDate), text(domain.ColCarrier)
	origins, dests, routes := text(domain.ColOrigin), text(domain.ColDest), text(domain.ColRoute)
	crs, tod, codes := text(domain.ColCRSDepTime), text(domain.ColTimeOfDay), text(domain.ColCancellationCode)
	hours, delayed := num(domain.ColHourOfDay), text(domain.ColIsDelayed)
	arr, dep, dist := num(domain.ColArrDelay), num(domain.ColDepDelay), num(domain.ColDistance)
	causes := make([][]float64, len(domain.DelayCauseColumns))
	for k, col := range domain.DelayCauseColumns {
		causes[k] = num(col)
	}

	out := make([]FlightRow, n)
	for i := range out {
		out[i] = FlightRow{
			FlightDate:        dates[i],
			Carrier:           carriers[i],
			Origin:            origins[i],
			Dest:              dests[i],
			Route:             routes[i],
			CRSDepTime:        crs[i],
			HourOfDay:         int32(zeroIfNaN(hours[i])),
			TimeOfDay:         tod[i],
			ArrDelay:          optional(arr[i]),
			DepDelay:          optional(dep[i]),
			Distance:          optional(dist[i]),
			IsDelayed:         delayed[i] == "true",
			CancellationCode:  codes[i],
			CarrierDelay:      zeroIfNaN(causes[0][i]),
			WeatherDelay:      zeroIfNaN(causes[1][i]),
			NASDelay:          zeroIfNaN(causes[2][i]),
			SecurityDelay:     zeroIfNaN(causes[3][i]),
			LateAircraftDelay: zeroIfNaN(causes[4][i]),
		}
	}
	return out
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
