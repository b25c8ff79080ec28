package domain

// Raw columns of the on-time performance export.
const (
	ColFlightDate        = "fl_date"
	ColArrDelay          = "arr_delay"
	ColDepDelay          = "dep_delay"
	ColDistance          = "distance"
	ColCRSDepTime        = "crs_dep_time"
	ColDepTime           = "dep_time"
	ColArrTime           = "arr_time"
	ColCarrier           = "op_unique_carrier"
	ColOrigin            = "origin"
	ColDest              = "dest"
	ColCancelled         = "cancelled"
	ColDiverted          = "diverted"
	ColCancellationCode  = "cancellation_code"
	ColCarrierDelay      = "carrier_delay"
	ColWeatherDelay      = "weather_delay"
	ColNASDelay          = "nas_delay"
	ColSecurityDelay     = "security_delay"
	ColLateAircraftDelay = "late_aircraft_delay"
)

// Derived columns.
const (
	ColHourOfDay = "hour_of_day"
	ColTimeOfDay = "time_of_day"
	ColIsDelayed = "is_delayed"
	ColRoute     = "route"
)

// NotCancelled fills cancellation_code for flights that operated.
const NotCancelled = "Not_Cancelled"

// DelayedThreshold is the arrival delay, in minutes, at which a flight counts as delayed.
const DelayedThreshold = 15.0

// RouteSeparator joins origin and destination in the route column.
const RouteSeparator = " -> "

// RequiredColumns is the boundary contract for raw input.
var RequiredColumns = []string{
	ColFlightDate,
	ColArrDelay,
	ColDepDelay,
	ColDistance,
	ColCRSDepTime,
	ColCarrier,
	ColOrigin,
	ColDest,
	ColCancelled,
	ColCancellationCode,
	ColCarrierDelay,
	ColWeatherDelay,
	ColNASDelay,
	ColSecurityDelay,
	ColLateAircraftDelay,
}

// DelayCauseColumns lists the delay-cause breakdown in BTS order.
var DelayCauseColumns = []string{
	ColCarrierDelay,
	ColWeatherDelay,
	ColNASDelay,
	ColSecurityDelay,
	ColLateAircraftDelay,
}

// CoreColumns must be non-null for a row to survive cleaning. Only the ones
// present in a given table are checked.
var CoreColumns = []string{
	ColDepTime,
	ColArrTime,
	ColDepDelay,
	ColArrDelay,
	ColDistance,
}

// AnalysisColumns must be present in any table handed to plotting.
var AnalysisColumns = []string{
	ColFlightDate,
	ColCarrier,
	ColOrigin,
	ColDest,
	ColArrDelay,
	ColDepDelay,
	ColHourOfDay,
	ColTimeOfDay,
	ColIsDelayed,
	ColRoute,
}

// TimeOfDay buckets a departure hour.
type TimeOfDay string

const (
	Morning     TimeOfDay = "Morning"
	Afternoon   TimeOfDay = "Afternoon"
	Evening     TimeOfDay = "Evening"
	NightRedEye TimeOfDay = "Night/Red-eye"
)

// TimesOfDay lists every label in chronological order starting at 06:00.
var TimesOfDay = []TimeOfDay{Morning, Afternoon, Evening, NightRedEye}

var cancellationReasons = map[string]string{
	"A": "Carrier",
	"B": "Weather",
	"C": "National Air System",
	"D": "Security",
}

// CancellationReason returns a readable label for a BTS cancellation code,
// or the code itself when it is not a known one.
func CancellationReason(code string) string {
	if label, ok := cancellationReasons[code]; ok {
		return label
	}
	return code
}
