package ffd

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// FitOption configures FitCumulative.
type FitOption func(*fitSettings)

type fitSettings struct {
	iterations int
}

// WithIterations caps the Levenberg-Marquardt iterations.
func WithIterations(n int) FitOption {
	return func(s *fitSettings) { s.iterations = n }
}

// Point is one flare on the cumulative distribution.
type Point struct {
	Energy float64
	Freq   float64 // flares per day at or above Energy
	Count  int
}

// EDAndFreq ranks flares by energy. energies must be sorted ascending; the
// i-th flare is exceeded or matched by len-i flares. totObsTime is in days.
func EDAndFreq(energies []float64, totObsTime float64) ([]Point, error) {
	if totObsTime <= 0 {
		return nil, fmt.Errorf("%w: observing time %v", ErrDomain, totObsTime)
	}
	for i := 1; i < len(energies); i++ {
		if energies[i] < energies[i-1] {
			return nil, fmt.Errorf("%w: index %d", ErrUnsorted, i)
		}
	}

	n := len(energies)
	pts := make([]Point, n)
	for i, e := range energies {
		pts[i] = Point{Energy: e, Count: n - i, Freq: float64(n-i) / totObsTime}
	}
	return pts, nil
}

// FitPowerLaw fits the FFD of ascending energies observed over totObsTime days.
func FitPowerLaw(energies []float64, totObsTime float64) (Params, error) {
	pts, err := EDAndFreq(energies, totObsTime)
	if err != nil {
		return Params{}, err
	}
	e := make([]float64, len(pts))
	r := make([]float64, len(pts))
	for i, p := range pts {
		e[i], r[i] = p.Energy, p.Freq
	}
	return FitCumulative(e, r)
}

// FitCumulative least-squares fits log10 R = log10(beta/(alpha-1)) +
// (1-alpha) log10 E to cumulative rates. alpha is held above 1; the errors
// come from the covariance of (alpha, log10 beta).
func FitCumulative(energies, rates []float64, opts ...FitOption) (Params, error) {
	set := fitSettings{iterations: 1000}
	for _, opt := range opts {
		opt(&set)
	}

	n := len(energies)
	if n != len(rates) {
		return Params{}, fmt.Errorf("%w: %d energies, %d rates", ErrDomain, n, len(rates))
	}
	if n < 3 {
		return Params{}, fmt.Errorf("%w: need at least 3 flares, got %d", ErrDomain, n)
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range energies {
		if energies[i] <= 0 || rates[i] <= 0 {
			return Params{}, fmt.Errorf("%w: non-positive point %d", ErrDomain, i)
		}
		x[i] = math.Log10(energies[i])
		y[i] = math.Log10(rates[i])
	}

	model := func(α, lb, xi float64) float64 {
		return lb - math.Log10(α-1) + (1-α)*xi
	}

	// p[0] = log(alpha - 1), p[1] = log10 beta
	resFunc := func(dst, p []float64) {
		α := 1 + math.Exp(p[0])
		for i := range x {
			dst[i] = model(α, p[1], x[i]) - y[i]
		}
	}

	// start from alpha = 2 through the first point
	p0 := []float64{0, y[0] + x[0]}

	nj := lm.NumJac{Func: resFunc}
	problem := lm.LMProblem{
		Dim:        2,
		Size:       n,
		Func:       resFunc,
		Jac:        nj.Jac,
		InitParams: p0,
		Tau:        1e-6,
		Eps1:       1e-10,
		Eps2:       1e-10,
	}

	result, err := lm.LM(problem, &lm.Settings{Iterations: set.iterations, ObjectiveTol: 1e-16})
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}
	if result.Status == optimize.IterationLimit {
		return Params{}, fmt.Errorf("%w: iteration limit %d reached", ErrNoConvergence, set.iterations)
	}

	α := 1 + math.Exp(result.X[0])
	lb := result.X[1]
	if math.IsNaN(α) || math.IsInf(α, 0) || math.IsNaN(lb) || math.IsInf(lb, 0) {
		return Params{}, fmt.Errorf("%w: non-finite parameters", ErrNoConvergence)
	}

	// covariance of (alpha, log10 beta)
	J := mat.NewDense(n, 2, nil)
	rss := 0.
	for i := range x {
		J.Set(i, 0, -1/((α-1)*math.Ln10)-x[i])
		J.Set(i, 1, 1)
		r := model(α, lb, x[i]) - y[i]
		rss += r * r
	}
	var jtj, cov mat.Dense
	jtj.Mul(J.T(), J)
	if err := cov.Inverse(&jtj); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Params{}, fmt.Errorf("%w: singular normal matrix", ErrNoConvergence)
		}
	}
	s2 := rss / float64(n-2)
	σα := math.Sqrt(s2 * cov.At(0, 0))
	σlb := math.Sqrt(s2 * cov.At(1, 1))

	β := math.Pow(10, lb)
	return Params{
		Alpha:       α,
		Beta:        β,
		AlphaLowErr: σα,
		AlphaUpErr:  σα,
		BetaLowErr:  β - math.Pow(10, lb-σlb),
		BetaUpErr:   math.Pow(10, lb+σlb) - β,
	}, nil
}
