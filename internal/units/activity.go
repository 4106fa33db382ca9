package units

import (
	"fmt"
	"math"

	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
)

// ConvectiveTurnoverTime returns the convective turnover time in days from
// the V-Ks colour (Wright et al. 2018, eq. 5).
func ConvectiveTurnoverTime(V, Ks float64) float64 {
	return math.Pow(10, 0.64+0.25*(V-Ks))
}

// ConvectiveTurnoverBounds returns the upper and lower turnover times implied
// by the calibration uncertainties and the magnitude errors.
func ConvectiveTurnoverBounds(V, Ks, eV, eKs float64) (float64, float64) {
	high := 0.74 + 0.33*(V+eV-Ks+eKs)
	low := 0.54 + 0.17*(V-eV-Ks-eKs)
	return math.Pow(10, high), math.Pow(10, low)
}

// RossbyNumber is the rotation period over the convective turnover time.
func RossbyNumber(prot, tau float64) (float64, error) {
	if tau == 0 {
		return 0, fmt.Errorf("%w: turnover time is zero", ErrDivideByZero)
	}
	return prot / tau, nil
}

// massDensity returns rho0 = n m_e in kg m^-3 for an electron density in cm^-3.
func massDensity(n float64) float64 {
	return n * 1e6 * config.ElectronMassKG
}

// DecayTimeFromField returns the reconnection decay time in s of a flare of
// energy E (erg) in a field of B Gauss, for coronal density n (cm^-3) and
// Alfven Mach number ma.
func DecayTimeFromField(E, B, n, ma float64) float64 {
	μ0 := config.VacuumPermeability
	e := E * 1e-7
	b := B * 1e-4
	return math.Cbrt(e) * math.Pow(b, -5./3.) * math.Sqrt(massDensity(n)*μ0) / ma * math.Cbrt(2*μ0)
}

// DecayTimeFromLoop returns the reconnection decay time in s of a flare of
// energy E (erg) in a loop of length L (cm).
func DecayTimeFromLoop(E, L, n, ma float64) float64 {
	e := E * 1e-7
	l := L * 1e-2
	return math.Pow(e, -0.5) * math.Pow(l, 2.5) * math.Sqrt(massDensity(n)) / ma * math.Cbrt(2)
}
