package chart

import (
	"errors"
	"io/fs"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/csvfile"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

// cancellationCounts counts cancellation codes from the first source that has
// any: the cancellations file written during cleaning, then cancelled rows of
// cleaned, then cancelled rows of the raw file. It returns the counts and the
// name of the source used.
func (r *Renderer) cancellationCounts(cleaned *domain.Dataset) ([]domain.Count, string) {
	if side := r.loadOptional(csvfile.CancellationsPath(r.data.CleanedFile), "cancellations"); side != nil {
		if counts := codeCounts(cancelledRows(side)); len(counts) > 0 {
			return counts, "cancellations file"
		}
	}
	if counts := codeCounts(cancelledRows(cleaned)); len(counts) > 0 {
		return counts, "cleaned table"
	}
	if raw := r.loadOptional(r.data.RawFile, "raw"); raw != nil {
		if counts := codeCounts(cancelledRows(raw)); len(counts) > 0 {
			return counts, "raw file"
		}
	}
	return nil, ""
}

// loadOptional loads path, returning nil when it is absent or unreadable.
func (r *Renderer) loadOptional(path, source string) *domain.Dataset {
	ds, err := csvfile.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("cancellation source unreadable", "source", source, "path", path, "error", err)
		}
		return nil
	}
	r.metrics.RowsLoaded.WithLabelValues(source).Add(float64(ds.Len()))
	return ds
}

// cancelledRows keeps rows flagged cancelled. Tables without the flag, such
// as a cleaned table, yield nil.
func cancelledRows(ds *domain.Dataset) *domain.Dataset {
	if ds == nil || !ds.Has(domain.ColCancelled) {
		return nil
	}
	out, err := ds.Keep(ds.Flags(domain.ColCancelled))
	if err != nil {
		return nil
	}
	return out
}

// codeCounts counts real cancellation codes, ignoring the operated-flight sentinel.
func codeCounts(ds *domain.Dataset) []domain.Count {
	if ds == nil {
		return nil
	}
	var out []domain.Count
	for _, c := range domain.CountBy(ds, domain.ColCancellationCode) {
		if c.Key != domain.NotCancelled {
			out = append(out, c)
		}
	}
	return out
}
