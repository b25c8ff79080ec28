package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/csvfile"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
)

// Loader reads CSV tables and records how many rows each source supplied.
type Loader struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{logger: logger, metrics: metrics}
}

// Raw loads the raw export and rejects it unless every required column is present.
func (l *Loader) Raw(path string) (*domain.Dataset, error) {
	ds, err := l.Table(path, "raw", "check data.raw_file")
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateSchema(ds, domain.RequiredColumns); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return ds, nil
}

// Table loads any CSV table. source labels the row metric; hint is attached
// to the error when the file does not exist.
func (l *Loader) Table(path, source, hint string) (*domain.Dataset, error) {
	if err := requireFile(path, hint); err != nil {
		return nil, err
	}
	ds, err := csvfile.Load(path)
	if err != nil {
		return nil, err
	}
	l.metrics.RowsLoaded.WithLabelValues(source).Add(float64(ds.Len()))
	l.logger.Info("table loaded", "source", source, "path", path, "rows", ds.Len(), "columns", len(ds.Columns()))
	return ds, nil
}

func requireFile(path, hint string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingFileError{Path: path, Hint: hint}
		}
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
