package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Dataset is an ordered table of flight records sharing one schema.
//
// Row selection (Keep, Rows) returns a new Dataset. Column setters mutate the
// receiver, so a caller must hold the only reference while it transforms.
type Dataset struct {
	frame dataframe.DataFrame

	// dates holds fl_date parsed by NormalizeDates, aligned with frame rows.
	// nil until normalization ran.
	dates []time.Time
}

// NewDataset wraps a gota DataFrame.
func NewDataset(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("dataset: %w", df.Err)
	}
	return &Dataset{frame: df}, nil
}

// NAValues are the cell texts read as missing.
var NAValues = []string{"", "NA", "NaN", "nan", "NULL", "null", "<nil>"}

// FromRecords builds a Dataset from text records, header first. Columns named
// in types get that type; the rest are detected from their values. A header
// with no data rows yields an empty Dataset with the same columns.
func FromRecords(records [][]string, types map[string]series.Type) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New("dataset: no header row")
	}
	if len(records) == 1 {
		header := records[0]
		cols := make([]series.Series, len(header))
		for i, name := range header {
			t, ok := types[name]
			if !ok {
				t = series.String
			}
			cols[i] = series.New([]string{}, t, name)
		}
		return NewDataset(dataframe.New(cols...))
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(NAValues),
		dataframe.WithTypes(types),
	)
	return NewDataset(df)
}

// Frame returns the underlying DataFrame.
func (d *Dataset) Frame() dataframe.DataFrame { return d.frame }

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.frame.Nrow() }

// Columns returns the column names in table order.
func (d *Dataset) Columns() []string { return d.frame.Names() }

// Has reports whether the table carries the named column.
func (d *Dataset) Has(name string) bool {
	return slices.Contains(d.frame.Names(), name)
}

// Col returns a copy of the named column.
func (d *Dataset) Col(name string) series.Series { return d.frame.Col(name) }

// Records returns the table as text, header first.
func (d *Dataset) Records() [][]string { return d.frame.Records() }

// Copy returns a deep copy.
func (d *Dataset) Copy() *Dataset {
	return &Dataset{frame: d.frame.Copy(), dates: slices.Clone(d.dates)}
}

// SetColumn adds s, or replaces the column with the same name.
func (d *Dataset) SetColumn(s series.Series) error {
	if s.Err != nil {
		return fmt.Errorf("set column %s: %w", s.Name, s.Err)
	}
	out := d.frame.Mutate(s)
	if out.Err != nil {
		return fmt.Errorf("set column %s: %w", s.Name, out.Err)
	}
	d.frame = out
	return nil
}

// Keep returns the rows where mask is true, in their original order.
func (d *Dataset) Keep(mask []bool) (*Dataset, error) {
	if len(mask) != d.Len() {
		return nil, fmt.Errorf("keep: mask has %d entries for %d rows", len(mask), d.Len())
	}
	idx := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			idx = append(idx, i)
		}
	}
	return d.Rows(idx)
}

// Rows returns the rows at the given positions.
func (d *Dataset) Rows(idx []int) (*Dataset, error) {
	for _, i := range idx {
		if i < 0 || i >= d.Len() {
			return nil, fmt.Errorf("rows: index %d out of range [0,%d)", i, d.Len())
		}
	}
	sub := d.frame.Subset(idx)
	if sub.Err != nil {
		return nil, fmt.Errorf("rows: %w", sub.Err)
	}
	out := &Dataset{frame: sub}
	if d.dates != nil {
		out.dates = make([]time.Time, len(idx))
		for k, i := range idx {
			out.dates[k] = d.dates[i]
		}
	}
	return out, nil
}

// Floats returns the named column as float64, with NaN for missing values.
// It returns nil when the column is absent.
func (d *Dataset) Floats(name string) []float64 {
	if !d.Has(name) {
		return nil
	}
	s := d.frame.Col(name)
	out := make([]float64, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out
}

// Texts returns the named column as strings, with "" for missing values.
// It returns nil when the column is absent.
func (d *Dataset) Texts(name string) []string {
	if !d.Has(name) {
		return nil
	}
	s := d.frame.Col(name)
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out
}

// Missing reports, per row, whether the named column holds no usable value.
// It returns nil when the column is absent.
func (d *Dataset) Missing(name string) []bool {
	if !d.Has(name) {
		return nil
	}
	s := d.frame.Col(name)
	out := make([]bool, s.Len())
	for i := range out {
		e := s.Elem(i)
		out[i] = e.IsNA() || (e.Type() == series.Float && math.IsNaN(e.Float()))
	}
	return out
}

// Flags reports, per row, whether the named 0/1 column is set. A missing
// column or value counts as unset.
func (d *Dataset) Flags(name string) []bool {
	out := make([]bool, d.Len())
	for i, v := range d.Floats(name) {
		out[i] = v == 1
	}
	return out
}

// Dates returns fl_date parsed by NormalizeDates, or nil before normalization.
// Unparseable dates are zero.
func (d *Dataset) Dates() []time.Time { return d.dates }

// DatesNormalized reports whether fl_date holds parsed dates rather than text.
func (d *Dataset) DatesNormalized() bool { return d.dates != nil }

// ErrEmptyDataset is returned by operations that need at least one row.
var ErrEmptyDataset = errors.New("dataset has no rows")
