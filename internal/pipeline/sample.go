package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/csvfile"
	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
)

// Sampler writes a reproducible subset of the raw export for smoke runs.
type Sampler struct {
	data    config.DataConfig
	loader  *Loader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSampler creates a Sampler.
func NewSampler(cfg *config.Config, loader *Loader, logger *slog.Logger, metrics *observability.Metrics) *Sampler {
	return &Sampler{data: cfg.Data, loader: loader, logger: logger, metrics: metrics}
}

// Write draws data.sample_rows raw rows with data.sample_seed, keeping their
// original order, and saves them to data.sample_file.
func (s *Sampler) Write() (*domain.Dataset, error) {
	raw, err := s.loader.Raw(s.data.RawFile)
	if err != nil {
		return nil, err
	}
	sample, err := raw.Rows(domain.SampleRows(raw.Len(), s.data.SampleRows, s.data.SampleSeed))
	if err != nil {
		return nil, fmt.Errorf("sample rows: %w", err)
	}
	if err := csvfile.Save(s.data.SampleFile, sample); err != nil {
		return nil, fmt.Errorf("save sample: %w", err)
	}
	s.metrics.RowsWritten.WithLabelValues("sample").Add(float64(sample.Len()))
	s.logger.Info("sample written", "path", s.data.SampleFile, "rows", sample.Len(), "of", raw.Len(), "seed", s.data.SampleSeed)
	return sample, nil
}
