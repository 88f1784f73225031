// Package domain models the NWC0 station's 5-minute telemetry and the
// quality-assurance rules applied to it.
//
// # Data Source
//
// The station runs a Campbell Scientific CR300 datalogger that writes a TOA5
// CSV table every 5 minutes: TIMESTAMP, RECORD, TAIR, RELH, SRAD, WSPD, WMAX,
// WDIR, RAIN, BATV. The logger drops rows during power or comms outages and
// can repeat rows after a table re-collect, so the raw file has gaps and
// duplicates.
//
// # Processing
//
//	BuildGrid  start..end at 5-minute spacing, inclusive
//	Merge      left join of raw rows onto the grid (one record per slot)
//	WindChill  CHIL from TAIR (°C) and WSPD (m/s), computed during the merge
//	Engine     per-variable range checks for TAIR, RELH, SRAD, WSPD, WMAX, CHIL
//	Partition  one DayFile per calendar day, 00:00 to 23:55
//	Summarize  one SummaryRow per day
//
// # Values and sentinels
//
// Every numeric field is a [Value]: Valid(x), Missing, or OutOfRange. Files
// encode the last two as the sentinel codes
//
//	-999  missing (no reading, or an unparsable cell)
//	-998  out of range (reading outside its configured limits)
//
// Sentinels only exist at the file boundary. A -999 or -998 read back from a
// file decodes to the matching state via [FromSentinel], which keeps QA
// idempotent: a missing reading is never re-flagged as out of range.
//
// CHIL is also flagged -998 when TAIR or WSPD was flagged -998, even if the
// computed chill itself is within limits. TAIR and WSPD are checked first.
//
// # Wind chill
//
//	Vk   = WSPD × 3.6
//	CHIL = 13.12 + 0.6215·TAIR − 11.37·Vk^0.16 + 0.3965·TAIR·Vk^0.16
//
// Vk^0.16 is the real part of the principal power for negative Vk. A
// negative wind speed should never survive QA, so this only keeps the
// formula total.
//
// # Daily summary
//
// Statistics treat both sentinel states as "no value". Missing observations
// counts records whose RECORD number is not valid; precipitation sums valid
// RAIN (0 for a day without any); TAIR and WSPD min/max/mean are NaN for a
// day without a valid reading.
package domain
