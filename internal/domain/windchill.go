package domain

import (
	"math"
	"math/cmplx"
)

// WindChill derives the "feels-like" temperature from air temperature (°C)
// and wind speed (m/s). The result is Missing when either input is not a
// valid reading.
func WindChill(tair, wspd Value) Value {
	t, okT := tair.Float()
	v, okV := wspd.Float()
	if !okT || !okV {
		return Missing()
	}
	return Valid(windChill(t, v))
}

// windChill evaluates
//
//	13.12 + 0.6215·T − 11.37·Vk^0.16 + 0.3965·T·Vk^0.16,  Vk = V·3.6
//
// For negative Vk the power is the real part of the principal complex power,
// so the formula stays defined for every real wind speed.
func windChill(t, v float64) float64 {
	p := realPow(v*3.6, 0.16)
	return 13.12 + 0.6215*t - 11.37*p + 0.3965*t*p
}

func realPow(base, exp float64) float64 {
	if base >= 0 {
		return math.Pow(base, exp)
	}
	return real(cmplx.Pow(complex(base, 0), complex(exp, 0)))
}
