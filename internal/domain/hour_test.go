package domain_test

import (
	"math"
	"testing"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
)

func TestGetHour(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
	}{
		{"int hhmm", 1230, 12},
		{"float hhmm", 1545.0, 15},
		{"padded string", "0815", 8},
		{"short string", "815", 8},
		{"decimal string", "2359.0", 23},
		{"midnight 2400 wraps", 2400, 0},
		{"early morning", 5, 0},
		{"negative wraps", -100, 23},
		{"missing", nil, 0},
		{"empty string", "", 0},
		{"garbage string", "noon", 0},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
		{"int64", int64(1900), 19},
		{"unsupported type", struct{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.GetHour(tt.input))
		})
	}
}

func TestGetHour_SeriesElements(t *testing.T) {
	floats := series.New([]string{"1545", "NaN"}, series.Float, "crs_dep_time")
	assert.Equal(t, 15, domain.GetHour(floats.Elem(0)))
	assert.Equal(t, 0, domain.GetHour(floats.Elem(1)))

	texts := series.New([]string{"0630", "NaN", "x"}, series.String, "crs_dep_time")
	assert.Equal(t, 6, domain.GetHour(texts.Elem(0)))
	assert.Equal(t, 0, domain.GetHour(texts.Elem(1)))
	assert.Equal(t, 0, domain.GetHour(texts.Elem(2)))
}

func TestGetHour_AlwaysInRange(t *testing.T) {
	for v := -5000; v <= 5000; v += 7 {
		h := domain.GetHour(v)
		assert.GreaterOrEqual(t, h, 0, "input %d", v)
		assert.LessOrEqual(t, h, 23, "input %d", v)
	}
}

func TestAssignTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want domain.TimeOfDay
	}{
		{7, domain.Morning},
		{13, domain.Afternoon},
		{18, domain.Evening},
		{2, domain.NightRedEye},
		{6, domain.Morning},
		{10, domain.Morning},
		{11, domain.Afternoon},
		{15, domain.Afternoon},
		{16, domain.Evening},
		{20, domain.Evening},
		{21, domain.NightRedEye},
		{23, domain.NightRedEye},
		{0, domain.NightRedEye},
		{-3, domain.NightRedEye},
		{42, domain.NightRedEye},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.AssignTimeOfDay(tt.hour), "hour %d", tt.hour)
	}
}

func TestAssignTimeOfDay_CoversEveryHour(t *testing.T) {
	counts := map[domain.TimeOfDay]int{}
	for h := range 24 {
		counts[domain.AssignTimeOfDay(h)]++
	}
	assert.Equal(t, map[domain.TimeOfDay]int{
		domain.Morning:     5,
		domain.Afternoon:   5,
		domain.Evening:     5,
		domain.NightRedEye: 9,
	}, counts)
}
