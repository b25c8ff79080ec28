package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// GetHour extracts the hour from an HHMM-encoded departure time.
// It accepts numbers, numeric strings and gota elements. Missing, non-finite
// or unparseable values map to 0.
func GetHour(v any) int {
	f, ok := hhmmValue(v)
	if !ok {
		return 0
	}
	return hourOf(f)
}

func hourOf(hhmm float64) int {
	if math.IsNaN(hhmm) || math.IsInf(hhmm, 0) {
		return 0
	}
	h := math.Mod(math.Floor(hhmm/100), 24)
	if h < 0 {
		h += 24
	}
	return int(h)
}

func hhmmValue(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case series.Element:
		if x.IsNA() {
			return 0, false
		}
		if x.Type() == series.String {
			return parseHHMM(x.String())
		}
		return x.Float(), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		return parseHHMM(x)
	default:
		return 0, false
	}
}

// parseHHMM parses "0815", "815" or "815.0".
func parseHHMM(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// AssignTimeOfDay buckets an hour. Every integer maps to exactly one label;
// anything outside 06:00-20:59 is a red-eye.
func AssignTimeOfDay(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour < 11:
		return Morning
	case hour >= 11 && hour < 16:
		return Afternoon
	case hour >= 16 && hour < 21:
		return Evening
	default:
		return NightRedEye
	}
}
