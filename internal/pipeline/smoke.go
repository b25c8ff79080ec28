package pipeline

import (
	"fmt"
	"math"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

// smoke loads the sample file, or the cleaned file when there is no sample,
// derives dates and features, and checks the table is fit for plotting.
func (r *Runner) smoke() (*domain.Dataset, error) {
	path, source := r.cfg.Data.SampleFile, "sample"
	if !fileExists(path) {
		path, source = r.cfg.Data.CleanedFile, "cleaned"
	}
	if !fileExists(path) {
		return nil, &MissingFileError{
			Path: r.cfg.Data.SampleFile,
			Hint: fmt.Sprintf("no cleaned file at %s either, run Phase 2 first", r.cfg.Data.CleanedFile),
		}
	}

	ds, err := r.loader.Table(path, source, "")
	if err != nil {
		return nil, err
	}
	if err := r.prepare(ds); err != nil {
		return nil, err
	}
	if err := CheckAnalysisReady(ds); err != nil {
		return nil, err
	}
	r.logger.Info("smoke test passed", "source", source, "rows", ds.Len())
	return ds, nil
}

// CheckAnalysisReady verifies the columns plotting relies on are present,
// fl_date holds parsed dates and hour_of_day lies within 0-23.
func CheckAnalysisReady(ds *domain.Dataset) error {
	var problems []string
	for _, col := range domain.AnalysisColumns {
		if !ds.Has(col) {
			problems = append(problems, "missing column "+col)
		}
	}
	if !ds.DatesNormalized() {
		problems = append(problems, "fl_date is not a date column")
	}
	for i, h := range ds.Floats(domain.ColHourOfDay) {
		if math.IsNaN(h) || h < 0 || h > 23 {
			problems = append(problems, fmt.Sprintf("hour_of_day out of range at row %d", i))
			break
		}
	}
	if len(problems) > 0 {
		return &SmokeError{Problems: problems}
	}
	return nil
}
