// Package units converts spectral-fit and photometric quantities into physical
// units. Every function is a closed-form formula; the leading coefficients and
// exponents are the published scaling-law values and must not be rounded.
package units

import (
	"math"

	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
)

// NormToEM converts an APEC norm to log10 emission measure in cm^-3 for a star
// at the default distance of 13.7 pc.
func NormToEM(norm float64) float64 {
	return NormToEMAt(norm, config.DefaultDistancePC)
}

// NormToEMAt converts an APEC norm to log10 emission measure in cm^-3 for a
// star at distancePC.
func NormToEMAt(norm, distancePC float64) float64 {
	d := distancePC * config.ParsecCM
	return math.Log10(1e14 * 4 * math.Pi * d * d * norm)
}

// FlareLoopSize returns the loop size in cm from emission measure (cm^-3),
// pre-flare electron density n0 (cm^-3) and temperature T (K).
func FlareLoopSize(em, n0, T float64) float64 {
	return 1e9 * math.Pow(em/1e48, 0.6) * math.Pow(n0/1e9, -0.4) * math.Pow(T/1e7, -1.6)
}

// FlareMagneticField returns the loop field strength in Gauss from emission
// measure (cm^-3), pre-flare electron density n0 (cm^-3) and temperature T (K).
func FlareMagneticField(em, n0, T float64) float64 {
	return 50 * math.Pow(em/1e48, -0.2) * math.Pow(n0/1e9, 0.3) * math.Pow(T/1e7, 1.7)
}

// FlareLoopSizeFromDuration returns the loop half length in m from the rise
// time (s, flare start to peak), the loop apex temperature (K) and the
// heating shape parameter psi.
func FlareLoopSizeFromDuration(duration, T, psi float64) float64 {
	return 0.6 * psi * psi * math.Sqrt(T) * duration
}

// ApexTemperature maps the fitted peak temperature (K) to the loop apex
// temperature used by FlareLoopSizeFromDuration.
func ApexTemperature(T float64) float64 {
	return 0.13 * math.Pow(T, 1.16)
}

// KeVToMK converts kT in keV to MK.
func KeVToMK(kT float64) float64 {
	return kT * config.KeVToMK
}

// RadiusToCM converts a radius in solar radii to cm.
func RadiusToCM(rsun float64) float64 {
	return rsun * config.SolarRadiusCM
}

// DaysToMinutes converts a duration in days to minutes.
func DaysToMinutes(d float64) float64 {
	return d * config.MinutesPerDay
}
