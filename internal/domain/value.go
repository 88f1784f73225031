package domain

import "math"

// Sentinel codes written in place of non-numeric outcomes at the file boundary.
const (
	MissingCode    = -999.0
	OutOfRangeCode = -998.0
)

// Status tags a Value. The zero Status is Missing so an unset field reads as absent.
type Status uint8

const (
	StatusMissing Status = iota
	StatusValid
	StatusOutOfRange
)

// String returns the lowercase status name used in logs and metric labels.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusOutOfRange:
		return "out_of_range"
	default:
		return "missing"
	}
}

// Value is one numeric field of an observation: Valid(x), Missing, or OutOfRange.
// Sentinel codes only exist at serialization time; see Encode and FromSentinel.
type Value struct {
	status Status
	v      float64
}

// Valid wraps a present reading. NaN and ±Inf are not readings and become Missing.
func Valid(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}
	}
	return Value{status: StatusValid, v: x}
}

// Missing returns an absent reading.
func Missing() Value { return Value{} }

// OutOfRange returns a reading that failed its range check.
func OutOfRange() Value { return Value{status: StatusOutOfRange} }

// FromSentinel maps a number read from a file back into a Value, so codes
// written by an earlier QA pass are not mistaken for readings.
func FromSentinel(x float64) Value {
	switch x {
	case MissingCode:
		return Missing()
	case OutOfRangeCode:
		return OutOfRange()
	default:
		return Valid(x)
	}
}

func (v Value) Status() Status     { return v.status }
func (v Value) IsValid() bool      { return v.status == StatusValid }
func (v Value) IsMissing() bool    { return v.status == StatusMissing }
func (v Value) IsOutOfRange() bool { return v.status == StatusOutOfRange }

// Float returns the reading and whether it is valid.
func (v Value) Float() (float64, bool) {
	return v.v, v.status == StatusValid
}

// OrNaN returns the reading, or NaN for both sentinel states. This is the
// "no value" view used by statistics and plotting.
func (v Value) OrNaN() float64 {
	if v.status != StatusValid {
		return math.NaN()
	}
	return v.v
}

// Encode returns the reading or its sentinel code.
func (v Value) Encode() float64 {
	switch v.status {
	case StatusValid:
		return v.v
	case StatusOutOfRange:
		return OutOfRangeCode
	default:
		return MissingCode
	}
}
