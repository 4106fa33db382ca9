package units

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
)

// planckNu is the blackbody spectral radiance B_nu at wavelength wavNM (nm),
// in erg s^-1 cm^-2 Hz^-1 sr^-1.
func planckNu(wavNM, T float64) float64 {
	ν := config.SpeedOfLightCGS / (wavNM * 1e-7)
	x := config.PlanckCGS * ν / (config.BoltzmannCGS * T)
	return 2 * config.PlanckCGS * ν * ν * ν / (config.SpeedOfLightCGS * config.SpeedOfLightCGS) / math.Expm1(x)
}

// bandFlux integrates the response-weighted blackbody over the band.
func bandFlux(T float64, wav, response []float64) float64 {
	f := make([]float64, len(wav))
	for i, w := range wav {
		f[i] = planckNu(w, T) * response[i]
	}
	return integrate.Trapezoidal(wav, f)
}

// FlareFactor returns the bolometric flare luminosity in erg/s that one
// second of equivalent duration corresponds to: the in-band flux ratio of a
// teff blackbody to a tflare blackbody, times pi R^2 sigma tflare^4.
//
// radius is in solar radii, wav in nm ascending, response the bandpass
// throughput at each wavelength.
func FlareFactor(
	teff, radius float64,
	wav, response []float64,
	tflare float64,
) (
	float64, error,
) {

	if len(wav) != len(response) {
		return 0, fmt.Errorf("%w: %d wavelengths, %d responses", ErrBadBand, len(wav), len(response))
	}
	if len(wav) < 2 {
		return 0, fmt.Errorf("%w: need at least two wavelengths", ErrBadBand)
	}
	for i := 1; i < len(wav); i++ {
		if wav[i] <= wav[i-1] {
			return 0, fmt.Errorf("%w: wavelengths not ascending at %d", ErrBadBand, i)
		}
	}
	if teff <= 0 || tflare <= 0 {
		return 0, fmt.Errorf("%w: temperatures must be positive", ErrBadBand)
	}

	fluxs := bandFlux(teff, wav, response)
	fluxf := bandFlux(tflare, wav, response)
	if fluxf == 0 {
		return 0, fmt.Errorf("%w: zero in-band flare flux", ErrDivideByZero)
	}

	r := RadiusToCM(radius)
	return fluxs / fluxf * math.Pi * r * r * config.StefanBoltzmannCGS * math.Pow(tflare, 4), nil
}
