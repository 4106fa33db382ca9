// Package decay fits a single exponential decay to the light curve around a
// flare:
//
//	flux(t) = 1 + A exp(-(t - t0) / tau)   for t >= t0
//	flux(t) = 1                            for t <  t0
//
// on a light curve normalised by its out-of-flare median.
package decay

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
)

// Model returns the normalised flux at t.
func Model(t, t0, tau, a float64) float64 {
	if t < t0 {
		return 1
	}
	return 1 + a*math.Exp(-(t-t0)/tau)
}

// Bounds are the closed box the fit parameters are held in.
type Bounds struct {
	T0Min, T0Max   float64
	TauMin, TauMax float64
	AMin, AMax     float64
}

// DefaultBounds holds t0 within a day of the flare, the e-folding time in
// (0, 1] day and the amplitude tight around the catalog value, which is
// trusted over the fit.
func DefaultBounds(ev flare.Event) Bounds {
	return Bounds{
		T0Min:  ev.Start - 1,
		T0Max:  ev.Stop + 1,
		TauMin: 0,
		TauMax: 1,
		AMin:   0.95 * ev.Amplitude,
		AMax:   1.00347 * ev.Amplitude,
	}
}

// OMBounds are the bounds for the OM time series, whose time axis is in
// seconds: t0 within 10 s of the peak and tau in [1, 100] s.
func OMBounds(ev flare.Event) Bounds {
	return Bounds{
		T0Min:  ev.Peak - 10,
		T0Max:  ev.Peak + 10,
		TauMin: 1,
		TauMax: 100,
		AMin:   0.95 * ev.Amplitude,
		AMax:   1.00347 * ev.Amplitude,
	}
}

func (b Bounds) lo() [3]float64 { return [3]float64{b.T0Min, b.TauMin, b.AMin} }
func (b Bounds) hi() [3]float64 { return [3]float64{b.T0Max, b.TauMax, b.AMax} }

// inside reports whether x lies strictly inside the box.
func (b Bounds) inside(x [3]float64) bool {
	lo, hi := b.lo(), b.hi()
	for i := range x {
		if !(x[i] > lo[i] && x[i] < hi[i]) {
			return false
		}
	}
	return true
}

// Fit is one converged decay fit.
type Fit struct {
	T0        float64
	Tau       float64
	Amplitude float64

	// Cov is the 3x3 covariance of (t0, tau, A), nil when JᵀJ is singular.
	// The t0 entries are NaN.
	Cov *mat.Dense

	// RSS is the residual sum of squares over N samples.
	RSS float64
	N   int

	// AtBound is set when a parameter converged onto its bound.
	AtBound bool
}

// Params returns (t0, tau, A).
func (f Fit) Params() [3]float64 {
	return [3]float64{f.T0, f.Tau, f.Amplitude}
}

// Errors returns the 1σ errors of (t0, tau, A), NaN without a covariance.
// The t0 error is always NaN.
func (f Fit) Errors() [3]float64 {
	if f.Cov == nil {
		return [3]float64{math.NaN(), math.NaN(), math.NaN()}
	}
	var σ [3]float64
	for i := range σ {
		σ[i] = math.Sqrt(f.Cov.At(i, i))
	}
	return σ
}

// Eval evaluates the fitted model at each t.
func (f Fit) Eval(t []float64) []float64 {
	y := make([]float64, len(t))
	for i, ti := range t {
		y[i] = Model(ti, f.T0, f.Tau, f.Amplitude)
	}
	return y
}
