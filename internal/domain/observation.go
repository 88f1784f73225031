package domain

import "time"

// Variable names a numeric column of the station record.
type Variable string

const (
	VarRecord Variable = "record"
	VarTair   Variable = "tair"
	VarRelh   Variable = "relh"
	VarSrad   Variable = "srad"
	VarWspd   Variable = "wspd"
	VarWmax   Variable = "wmax"
	VarWdir   Variable = "wdir"
	VarRain   Variable = "rain"
	VarBatv   Variable = "batv"
	VarChil   Variable = "chil"
)

// QAVariables are the variables with configured range limits, in evaluation
// order. CHIL is last because its rule reads the checked TAIR and WSPD.
var QAVariables = []Variable{VarTair, VarRelh, VarSrad, VarWspd, VarWmax, VarChil}

// Fields holds the numeric columns shared by raw and processed records.
type Fields struct {
	Record Value
	Tair   Value // air temperature, °C
	Relh   Value // relative humidity, %
	Srad   Value // solar radiation, W/m²
	Wspd   Value // wind speed, m/s
	Wmax   Value // wind gust, m/s
	Wdir   Value // wind direction, degrees
	Rain   Value // precipitation, mm
	Batv   Value // logger battery, V
}

// RawObservation is one decoded row of the telemetry file. Timestamps need
// not be unique, sorted, or on the sampling grid.
type RawObservation struct {
	Timestamp time.Time
	Line      int // source line, for diagnostics
	Fields
}

// Record is one grid slot after the merge, with the derived wind chill.
// The same shape carries QA'd values once the QA engine has run.
type Record struct {
	Timestamp time.Time
	Fields
	Chil Value
}

// Get returns the field named by v.
func (r Record) Get(v Variable) Value {
	switch v {
	case VarRecord:
		return r.Record
	case VarTair:
		return r.Tair
	case VarRelh:
		return r.Relh
	case VarSrad:
		return r.Srad
	case VarWspd:
		return r.Wspd
	case VarWmax:
		return r.Wmax
	case VarWdir:
		return r.Wdir
	case VarRain:
		return r.Rain
	case VarBatv:
		return r.Batv
	case VarChil:
		return r.Chil
	default:
		return Missing()
	}
}

// Set assigns the field named by v. Unknown names are ignored.
func (r *Record) Set(v Variable, val Value) {
	switch v {
	case VarRecord:
		r.Record = val
	case VarTair:
		r.Tair = val
	case VarRelh:
		r.Relh = val
	case VarSrad:
		r.Srad = val
	case VarWspd:
		r.Wspd = val
	case VarWmax:
		r.Wmax = val
	case VarWdir:
		r.Wdir = val
	case VarRain:
		r.Rain = val
	case VarBatv:
		r.Batv = val
	case VarChil:
		r.Chil = val
	}
}

// RawBatch is the decoded content of one telemetry file.
type RawBatch struct {
	Source       string
	Rows         int // data rows read, including rejected ones
	Observations []RawObservation
	// Problems lists cells that decoded as missing and rows that were
	// rejected. None of them stop the run.
	Problems []error
}
