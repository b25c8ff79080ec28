// Package csvfile reads and writes flight tables as comma-separated text.
//
// Raw exports may be gzip-compressed; a path ending in .gz is decompressed
// on the fly. Output is always plain CSV.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/klauspost/pgzip"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

// ColumnTypes pins the gota type of the known columns so that codes keep
// their leading zeros and HHMM times are not reinterpreted.
var ColumnTypes = map[string]series.Type{
	domain.ColFlightDate:        series.String,
	domain.ColCarrier:           series.String,
	domain.ColOrigin:            series.String,
	domain.ColDest:              series.String,
	domain.ColCancellationCode:  series.String,
	domain.ColCRSDepTime:        series.String,
	domain.ColDepTime:           series.String,
	domain.ColArrTime:           series.String,
	domain.ColTimeOfDay:         series.String,
	domain.ColRoute:             series.String,
	domain.ColArrDelay:          series.Float,
	domain.ColDepDelay:          series.Float,
	domain.ColDistance:          series.Float,
	domain.ColCancelled:         series.Float,
	domain.ColDiverted:          series.Float,
	domain.ColCarrierDelay:      series.Float,
	domain.ColWeatherDelay:      series.Float,
	domain.ColNASDelay:          series.Float,
	domain.ColSecurityDelay:     series.Float,
	domain.ColLateAircraftDelay: series.Float,
	domain.ColHourOfDay:         series.Int,
	domain.ColIsDelayed:         series.Bool,
}

// Load reads a CSV file, decompressing it when the name ends in .gz.
func Load(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReaderN(f, 256*1024, runtime.NumCPU())
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	ds, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// Read parses CSV text, header first.
func Read(r io.Reader) (*domain.Dataset, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: no header row")
	}
	for i := range records[0] {
		records[0][i] = strings.TrimSpace(records[0][i])
	}
	records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	return domain.FromRecords(records, ColumnTypes)
}

// Save writes ds as CSV, creating parent directories as needed.
func Save(path string, ds *domain.Dataset) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, ds); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Write encodes ds as CSV. Missing values are written as empty cells and
// floats in their shortest form.
func Write(w io.Writer, ds *domain.Dataset) error {
	names := ds.Columns()
	types := ds.Frame().Types()
	cols := make([][]string, len(names))
	for j, name := range names {
		if types[j] == series.Float {
			cols[j] = formatFloats(ds.Floats(name))
			continue
		}
		cols[j] = ds.Texts(name)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return err
	}
	row := make([]string, len(names))
	for i := range ds.Len() {
		for j := range cols {
			row[j] = cols[j][i]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloats(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}

// CancellationsPath derives the sibling file holding cancelled and diverted
// rows: data/clean.csv becomes data/clean_cancellations.csv.
func CancellationsPath(cleaned string) string {
	ext := filepath.Ext(cleaned)
	return strings.TrimSuffix(cleaned, ext) + "_cancellations" + ext
}
