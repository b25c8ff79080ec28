package domain

import (
	"strings"
	"time"

	"github.com/go-gota/gota/series"
)

// DateLayout is the text form of fl_date after normalization.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
}

// ParseDate parses a flight date in any of the layouts seen in BTS exports.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDates parses fl_date and rewrites it as yyyy-mm-dd. Values that do
// not parse become missing and are counted in unparsed. Calling it on an
// already normalized Dataset is a no-op.
func NormalizeDates(ds *Dataset) (unparsed int, err error) {
	if ds.DatesNormalized() {
		return 0, nil
	}
	if !ds.Has(ColFlightDate) {
		return 0, &SchemaError{Missing: []string{ColFlightDate}}
	}

	raw := ds.Texts(ColFlightDate)
	dates := make([]time.Time, len(raw))
	text := make([]string, len(raw))
	for i, s := range raw {
		t, ok := ParseDate(s)
		if !ok {
			if s != "" {
				unparsed++
			}
			text[i] = "NaN"
			continue
		}
		dates[i] = t
		text[i] = t.Format(DateLayout)
	}

	if err := ds.SetColumn(series.New(text, series.String, ColFlightDate)); err != nil {
		return 0, err
	}
	ds.dates = dates
	return unparsed, nil
}
