// Package domain models airline on-time performance records and the
// cleaning rules applied to them.
//
// # Data Source
//
// Records follow the Bureau of Transportation Statistics (BTS) "Reporting
// Carrier On-Time Performance" export, lower-cased column names, one row per
// scheduled flight leg. The pipeline only requires the fifteen columns listed
// in [RequiredColumns]; everything else is carried through untouched.
//
// # BTS Data Conventions
//
// Time format:
//
//	crs_dep_time, dep_time and arr_time are local clock times in HHMM
//	notation: 1510 = 15:10, 815 or "0815" = 08:15. The hour is floor(v/100)
//	wrapped into 0-23, so 2400 (reported for a midnight departure) becomes 0.
//	Missing or unparseable values map to hour 0. This is a known leniency.
//
// Delay values:
//
//	arr_delay and dep_delay are signed minutes relative to schedule (early
//	flights are negative). A flight counts as delayed when arr_delay >= 15,
//	the BTS on-time threshold.
//
// Cancellation and diversion:
//
//	cancelled and diverted are 0/1 flags stored as floats (1.00). Cancelled
//	flights legitimately carry no delay values. cancellation_code is one of
//	A (carrier), B (weather), C (national air system), D (security); rows
//	that were not cancelled get the sentinel [NotCancelled] during cleaning.
//
// Delay causes:
//
//	carrier_delay, weather_delay, nas_delay, security_delay and
//	late_aircraft_delay break the arrival delay down by cause. BTS only
//	populates them for delayed flights, so missing means zero minutes.
//
// # Derived Features
//
// hour_of_day, time_of_day, is_delayed and route are pure functions of other
// columns. [EnrichFeatures] only derives a feature when its source columns are
// present and the feature itself is absent, so it can be applied any number
// of times with the same result.
package domain
