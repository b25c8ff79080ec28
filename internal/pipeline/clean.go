package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"

	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/csvfile"
	"github.com/couchcryptid/flight-delay-eda/internal/adapter/parquet"
	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
)

// Drop reasons, used as metric labels.
const (
	reasonMissingDelays  = "missing_delays"
	reasonCancelled      = "cancelled_or_diverted"
	reasonIncompleteCore = "incomplete_core_fields"
)

// Cleaner turns the raw export into the analysis table and its cancellations
// side file.
type Cleaner struct {
	data    config.DataConfig
	loader  *Loader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCleaner creates a Cleaner.
func NewCleaner(cfg *config.Config, loader *Loader, logger *slog.Logger, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{data: cfg.Data, loader: loader, logger: logger, metrics: metrics}
}

// Clean runs the cleaning steps on raw, or on the configured raw file when raw
// is nil, writes the cleaned table and returns it. raw itself is not modified.
func (c *Cleaner) Clean(ctx context.Context, raw *domain.Dataset) (*domain.Dataset, error) {
	if raw == nil {
		loaded, err := c.loader.Raw(c.data.RawFile)
		if err != nil {
			return nil, err
		}
		raw = loaded
	} else if err := domain.ValidateSchema(raw, domain.RequiredColumns); err != nil {
		return nil, err
	}

	// Cancelled flights have no delays; anything else without both delays is corrupt.
	cancelled := raw.Flags(domain.ColCancelled)
	arrMissing := raw.Missing(domain.ColArrDelay)
	depMissing := raw.Missing(domain.ColDepDelay)
	usable := make([]bool, raw.Len())
	for i := range usable {
		usable[i] = cancelled[i] || (!arrMissing[i] && !depMissing[i])
	}
	ds, err := c.keep(raw, usable, reasonMissingDelays)
	if err != nil {
		return nil, err
	}

	if err := impute(ds); err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}

	unparsed, err := domain.NormalizeDates(ds)
	if err != nil {
		return nil, fmt.Errorf("normalize dates: %w", err)
	}
	if unparsed > 0 {
		c.logger.Warn("unparseable flight dates set to missing", "count", unparsed)
	}

	if err := domain.RecomputeHour(ds); err != nil {
		return nil, fmt.Errorf("recompute hour: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err = c.partition(ds)
	if err != nil {
		return nil, err
	}

	var core []string
	for _, col := range domain.CoreColumns {
		if ds.Has(col) {
			core = append(core, col)
		}
	}
	complete := make([]bool, ds.Len())
	for i := range complete {
		complete[i] = true
	}
	for _, col := range core {
		for i, m := range ds.Missing(col) {
			if m {
				complete[i] = false
			}
		}
	}
	ds, err = c.keep(ds, complete, reasonIncompleteCore)
	if err != nil {
		return nil, err
	}

	if err := domain.EnrichFeatures(ds); err != nil {
		return nil, fmt.Errorf("enrich features: %w", err)
	}

	if err := c.persist(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// keep filters ds by mask and accounts for the removed rows under reason.
func (c *Cleaner) keep(ds *domain.Dataset, mask []bool, reason string) (*domain.Dataset, error) {
	out, err := ds.Keep(mask)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", reason, err)
	}
	removed := ds.Len() - out.Len()
	c.metrics.RowsDropped.WithLabelValues(reason).Add(float64(removed))
	c.logger.Info("rows removed", "reason", reason, "removed", removed, "remaining", out.Len())
	return out, nil
}

// partition writes cancelled and diverted rows to the cancellations file and
// returns the operated flights.
func (c *Cleaner) partition(ds *domain.Dataset) (*domain.Dataset, error) {
	cancelled := ds.Flags(domain.ColCancelled)
	diverted := ds.Flags(domain.ColDiverted)
	off := make([]bool, ds.Len())
	operated := make([]bool, ds.Len())
	n := 0
	for i := range off {
		off[i] = cancelled[i] || diverted[i]
		operated[i] = !off[i]
		if off[i] {
			n++
		}
	}

	path := csvfile.CancellationsPath(c.data.CleanedFile)
	if n > 0 {
		side, err := ds.Keep(off)
		if err != nil {
			return nil, fmt.Errorf("partition: %w", err)
		}
		if err := csvfile.Save(path, side); err != nil {
			return nil, fmt.Errorf("save cancellations: %w", err)
		}
		c.metrics.RowsWritten.WithLabelValues("cancellations").Add(float64(n))
		c.logger.Info("cancellations written", "path", path, "rows", n)
	} else if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale cancellations: %w", err)
	}

	return c.keep(ds, operated, reasonCancelled)
}

func (c *Cleaner) persist(ds *domain.Dataset) error {
	if err := csvfile.Save(c.data.CleanedFile, ds); err != nil {
		return fmt.Errorf("save cleaned: %w", err)
	}
	c.metrics.RowsWritten.WithLabelValues("cleaned").Add(float64(ds.Len()))
	c.logger.Info("cleaned table written", "path", c.data.CleanedFile, "rows", ds.Len())

	if c.data.CleanedParquet == "" {
		return nil
	}
	n, err := parquet.WriteCleaned(c.data.CleanedParquet, ds)
	if err != nil {
		return fmt.Errorf("save parquet: %w", err)
	}
	c.metrics.RowsWritten.WithLabelValues("parquet").Add(float64(n))
	c.logger.Info("parquet export written", "path", c.data.CleanedParquet, "rows", n)
	return nil
}

// impute zero-fills the delay causes and marks operated flights in
// cancellation_code.
func impute(ds *domain.Dataset) error {
	for _, col := range domain.DelayCauseColumns {
		vals := ds.Floats(col)
		if vals == nil {
			continue
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				vals[i] = 0
			}
		}
		if err := ds.SetColumn(series.New(vals, series.Float, col)); err != nil {
			return err
		}
	}

	if !ds.Has(domain.ColCancellationCode) {
		return nil
	}
	codes := ds.Texts(domain.ColCancellationCode)
	for i, m := range ds.Missing(domain.ColCancellationCode) {
		if m {
			codes[i] = domain.NotCancelled
		}
	}
	return ds.SetColumn(series.New(codes, series.String, domain.ColCancellationCode))
}
