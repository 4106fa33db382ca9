// Package ffd evaluates power-law flare frequency distributions. The
// cumulative rate of flares above energy E is
//
//	R(>E) = beta / (alpha - 1) * E^(1 - alpha)
//
// for alpha > 1 and E > 0; energies may be bolometric energies in erg or
// equivalent durations in s, as long as beta was fitted in the same unit.
package ffd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Params is a fitted FFD with asymmetric errors.
type Params struct {
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	AlphaLowErr float64 `json:"alpha_low_err"`
	AlphaUpErr  float64 `json:"alpha_up_err"`
	BetaLowErr  float64 `json:"beta_low_err"`
	BetaUpErr   float64 `json:"beta_up_err"`
}

// CumulativeRate returns the rate of flares above energy.
func CumulativeRate(energy, alpha, beta float64) (float64, error) {
	if alpha <= 1 {
		return 0, fmt.Errorf("%w: alpha = %v", ErrDomain, alpha)
	}
	if energy <= 0 {
		return 0, fmt.Errorf("%w: energy = %v", ErrDomain, energy)
	}
	return beta / (alpha - 1) * math.Pow(energy, 1-alpha), nil
}

// RateAboveThreshold is the cumulative rate at a single threshold energy.
func RateAboveThreshold(threshold, alpha, beta float64) (float64, error) {
	return CumulativeRate(threshold, alpha, beta)
}

// Rate is CumulativeRate with the fitted alpha and beta.
func (p Params) Rate(energy float64) (float64, error) {
	return CumulativeRate(energy, p.Alpha, p.Beta)
}

// LogRateAbove returns log10 of the rate above 10^logE, e.g. R31.5 for
// logE = 31.5.
func (p Params) LogRateAbove(logE float64) (float64, error) {
	r, err := p.Rate(math.Pow(10, logE))
	if err != nil {
		return 0, err
	}
	if r <= 0 {
		return 0, fmt.Errorf("%w: rate %v has no logarithm", ErrDomain, r)
	}
	return math.Log10(r), nil
}

// ToEnergy converts an FFD fitted in equivalent duration into one in erg,
// given the luminosity factor E = factor * ED. Only beta and its errors
// change.
func (p Params) ToEnergy(factor float64) (Params, error) {
	if factor <= 0 {
		return Params{}, fmt.Errorf("%w: energy factor %v", ErrDomain, factor)
	}
	s := math.Pow(factor, p.Alpha-1)
	q := p
	q.Beta *= s
	q.BetaLowErr *= s
	q.BetaUpErr *= s
	return q, nil
}

// Curve holds the FFD and its envelope on an energy grid.
type Curve struct {
	Energy []float64
	Mid    []float64
	Low    []float64
	High   []float64
}

// Envelope evaluates the FFD and the corner envelope on energies. The high
// curve uses alpha + alpha_up_err and beta + beta_up_err, the low curve
// alpha - alpha_low_err and beta - beta_low_err. This is a conservative
// approximation, not a joint confidence region.
func (p Params) Envelope(energies []float64) (Curve, error) {
	c := Curve{
		Energy: append([]float64(nil), energies...),
		Mid:    make([]float64, len(energies)),
		Low:    make([]float64, len(energies)),
		High:   make([]float64, len(energies)),
	}
	hiA, hiB := p.Alpha+p.AlphaUpErr, p.Beta+p.BetaUpErr
	loA, loB := p.Alpha-p.AlphaLowErr, p.Beta-p.BetaLowErr

	var err error
	for i, e := range energies {
		if c.Mid[i], err = CumulativeRate(e, p.Alpha, p.Beta); err != nil {
			return Curve{}, err
		}
		if c.High[i], err = CumulativeRate(e, hiA, hiB); err != nil {
			return Curve{}, fmt.Errorf("high envelope: %w", err)
		}
		if c.Low[i], err = CumulativeRate(e, loA, loB); err != nil {
			return Curve{}, fmt.Errorf("low envelope: %w", err)
		}
	}
	return c, nil
}

// LogGrid returns n energies log-spaced between lo and hi.
func LogGrid(lo, hi float64, n int) []float64 {
	return floats.LogSpan(make([]float64, n), lo, hi)
}
