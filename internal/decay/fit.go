package decay

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
)

// Fitter fits exponential decays. The zero value is not usable; use NewFitter.
type Fitter struct {
	maxHalfWidth float64
	pad          float64
	bounds       func(flare.Event) Bounds
	iterations   int
}

// Option configures a Fitter.
type Option func(*Fitter)

// WithMaxHalfWidth sets the exclusive upper limit on (stop - start) / 2.
func WithMaxHalfWidth(w float64) Option {
	return func(f *Fitter) { f.maxHalfWidth = w }
}

// WithPad sets the baseline margin the segment must cover on both sides of
// the flare.
func WithPad(pad float64) Option {
	return func(f *Fitter) { f.pad = pad }
}

// WithBounds replaces DefaultBounds.
func WithBounds(b func(flare.Event) Bounds) Option {
	return func(f *Fitter) { f.bounds = b }
}

// WithIterations caps the Levenberg-Marquardt iterations of each solve.
func WithIterations(n int) Option {
	return func(f *Fitter) { f.iterations = n }
}

// NewFitter returns a Fitter for light curves with a time axis in days.
func NewFitter(opts ...Option) *Fitter {
	f := &Fitter{
		maxHalfWidth: 1,
		pad:          0.03,
		bounds:       DefaultBounds,
		iterations:   1000,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Check verifies the preconditions of a fit without running it.
func (f *Fitter) Check(seg flare.Segment, ev flare.Event) error {
	if err := ev.Validate(f.maxHalfWidth); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}

	b := f.bounds(ev)
	if !b.inside([3]float64{ev.Peak, ev.HalfWidth(), ev.Amplitude}) {
		return fmt.Errorf("%w: %s: initial guess outside bounds", ErrInvalidWindow, ev.Name())
	}

	if seg.Len() <= 3 {
		return fmt.Errorf("%w: %s: %d samples", ErrInvalidWindow, ev.Name(), seg.Len())
	}

	t := seg.Times()
	sort.Float64s(t)
	first, last := t[0], t[len(t)-1]
	// The cut around the flare is exclusive, so allow a cadence and a half.
	tol := 1.5 * cadence(t)
	if first >= ev.Start || first > ev.Start-f.pad+tol {
		return fmt.Errorf("%w: %s: baseline starts at %v, want %v", ErrInvalidWindow, ev.Name(), first, ev.Start-f.pad)
	}
	if last <= ev.Stop || last < ev.Stop+f.pad-tol {
		return fmt.Errorf("%w: %s: samples end at %v, want %v", ErrInvalidWindow, ev.Name(), last, ev.Stop+f.pad)
	}
	return nil
}

// Fit fits the decay model to seg, starting from t0 = peak,
// tau = (stop - start) / 2 and A = amplitude.
//
// The residuals jump whenever t0 crosses a sample, so t0 is first scanned
// over the samples inside the flare with (tau, A) solved at each, and the
// best onset is then refined in all three parameters.
func (f *Fitter) Fit(
	seg flare.Segment,
	ev flare.Event,
) (
	Fit, error,
) {

	if err := f.Check(seg, ev); err != nil {
		return Fit{}, err
	}

	b := f.bounds(ev)
	lo, hi := b.lo(), b.hi()
	t, y := seg.Times(), seg.Fluxes()

	guess := [3]float64{ev.Peak, ev.HalfWidth(), ev.Amplitude}
	var p0 [3]float64
	for i := range p0 {
		p0[i] = toInternal(guess[i], lo[i], hi[i])
	}
	external := func(p [3]float64) [3]float64 {
		var x [3]float64
		for i := range x {
			x[i] = toExternal(p[i], lo[i], hi[i])
		}
		return x
	}

	best, bestRSS := p0, math.Inf(1)
	for _, t0 := range onsets(t, ev, b) {
		p := p0
		p[0] = toInternal(t0, lo[0], hi[0])
		p, status, err := f.solve(t, y, p, b, 1, 2)
		if err != nil || status == optimize.IterationLimit {
			continue
		}
		if rss := sumSquares(t, y, external(p)); rss < bestRSS {
			best, bestRSS = p, rss
		}
	}
	if math.IsInf(bestRSS, 1) {
		return Fit{}, fmt.Errorf("%w: %s: no onset converged within %d iterations", ErrNoConvergence, ev.Name(), f.iterations)
	}

	p, status, err := f.solve(t, y, best, b, 0, 1, 2)
	if err != nil {
		return Fit{}, fmt.Errorf("%w: %s: %v", ErrNoConvergence, ev.Name(), err)
	}
	if status == optimize.IterationLimit {
		return Fit{}, fmt.Errorf("%w: %s: iteration limit %d reached", ErrNoConvergence, ev.Name(), f.iterations)
	}

	x := external(p)
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Fit{}, fmt.Errorf("%w: %s: non-finite parameters", ErrNoConvergence, ev.Name())
		}
	}

	rss := sumSquares(t, y, x)
	if start := sumSquares(t, y, guess); rss > start {
		return Fit{}, fmt.Errorf("%w: %s: residuals grew from %g to %g", ErrNoConvergence, ev.Name(), start, rss)
	}
	if rss > 0 && same(x, guess) {
		return Fit{}, fmt.Errorf("%w: %s: stalled at the initial guess", ErrNoConvergence, ev.Name())
	}

	fit := Fit{
		T0:        x[0],
		Tau:       x[1],
		Amplitude: x[2],
		RSS:       rss,
		N:         len(t),
		Cov:       covariance(t, x, rss),
	}
	for i := range x {
		if math.Abs(x[i]-lo[i]) <= 1e-9*(hi[i]-lo[i]) || math.Abs(hi[i]-x[i]) <= 1e-9*(hi[i]-lo[i]) {
			fit.AtBound = true
		}
	}
	return fit, nil
}

// solve runs Levenberg-Marquardt over the free parameters of p, which is in
// solver coordinates, and holds the others fixed.
func (f *Fitter) solve(
	t, y []float64,
	p [3]float64,
	b Bounds,
	free ...int,
) (
	_ [3]float64, _ optimize.Status, err error,
) {

	lo, hi := b.lo(), b.hi()
	external := func(q []float64) [3]float64 {
		var x [3]float64
		for i := range x {
			x[i] = toExternal(p[i], lo[i], hi[i])
		}
		for k, i := range free {
			x[i] = toExternal(q[k], lo[i], hi[i])
		}
		return x
	}

	resFunc := func(dst, q []float64) {
		x := external(q)
		for i := range t {
			dst[i] = Model(t[i], x[0], x[1], x[2]) - y[i]
		}
	}

	model := mat.NewDense(len(t), 3, nil)
	jacFunc := func(dst *mat.Dense, q []float64) {
		x := external(q)
		jacobian(model, t, x)
		for k, j := range free {
			s := slope(x[j], lo[j], hi[j])
			for i := range t {
				dst.Set(i, k, model.At(i, j)*s)
			}
		}
	}

	q0 := make([]float64, len(free))
	for k, i := range free {
		q0[k] = p[i]
	}

	// Solve for fit
	toBeSolved := lm.LMProblem{
		Dim:        len(free),
		Size:       len(t),
		Func:       resFunc,
		Jac:        jacFunc,
		InitParams: q0,
		Tau:        1e-3,
		Eps1:       1e-10,
		Eps2:       1e-10,
	}

	// lm panics on a singular normal matrix.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("levenberg-marquardt: %v", r)
		}
	}()
	results, err := lm.LM(toBeSolved, &lm.Settings{Iterations: f.iterations, ObjectiveTol: 1e-16})
	if err != nil {
		return p, optimize.Failure, err
	}
	for k, i := range free {
		p[i] = results.X[k]
	}
	return p, results.Status, nil
}

// onsets lists the trial values of t0: the peak, then every sample inside
// the flare that the bounds admit.
func onsets(t []float64, ev flare.Event, b Bounds) []float64 {
	out := []float64{ev.Peak}
	for _, ti := range t {
		if ti > ev.Start && ti < ev.Stop && ti > b.T0Min && ti < b.T0Max && ti != ev.Peak {
			out = append(out, ti)
		}
	}
	return out
}

// Outcome is the result of one fit in a batch.
type Outcome struct {
	Window flare.Window
	Fit    Fit
	Err    error
}

// FitBatch fits every window in order. A failed fit is reported in its
// outcome and does not stop the batch.
func (f *Fitter) FitBatch(windows []flare.Window) []Outcome {
	out := make([]Outcome, 0, len(windows))
	for _, w := range windows {
		fit, err := f.Fit(w.Segment, w.Event)
		out = append(out, Outcome{Window: w, Fit: fit, Err: err})
	}
	return out
}

// toExternal maps an unbounded solver parameter into (lo, hi).
func toExternal(p, lo, hi float64) float64 {
	return lo + (hi-lo)/(1+math.Exp(-p))
}

// toInternal is the inverse of toExternal for lo < x < hi.
func toInternal(x, lo, hi float64) float64 {
	return math.Log((x - lo) / (hi - x))
}

// slope is the derivative of toExternal at x.
func slope(x, lo, hi float64) float64 {
	return (x - lo) * (hi - x) / (hi - lo)
}

// jacobian fills dst with the derivatives of the model in (t0, tau, A).
// The t0 derivative is the one from the decay side of the step.
func jacobian(dst *mat.Dense, t []float64, x [3]float64) {
	t0, tau, a := x[0], x[1], x[2]
	for i, ti := range t {
		if ti < t0 {
			dst.Set(i, 0, 0)
			dst.Set(i, 1, 0)
			dst.Set(i, 2, 0)
			continue
		}
		e := math.Exp(-(ti - t0) / tau)
		dst.Set(i, 0, a/tau*e)
		dst.Set(i, 1, a*(ti-t0)/(tau*tau)*e)
		dst.Set(i, 2, e)
	}
}

func sumSquares(t, y []float64, x [3]float64) float64 {
	s := 0.
	for i := range t {
		r := Model(t[i], x[0], x[1], x[2]) - y[i]
		s += r * r
	}
	return s
}

func same(x, guess [3]float64) bool {
	for i := range x {
		if math.Abs(x[i]-guess[i]) > 1e-12*math.Max(1, math.Abs(guess[i])) {
			return false
		}
	}
	return true
}

// cadence is the median spacing of the sorted times t.
func cadence(t []float64) float64 {
	if len(t) < 2 {
		return 0
	}
	dt := make([]float64, len(t)-1)
	for i := range dt {
		dt[i] = t[i+1] - t[i]
	}
	sort.Float64s(dt)
	return dt[len(dt)/2]
}

// covariance returns s² (JᵀJ)⁻¹ with s² = RSS / (n - 3). Between samples t0
// trades off exactly against A, so only (tau, A) get a covariance and the
// t0 row and column are NaN.
func covariance(t []float64, x [3]float64, rss float64) *mat.Dense {
	n := len(t)

	full := mat.NewDense(n, 3, nil)
	jacobian(full, t, x)
	J := full.Slice(0, n, 1, 3)

	var jtj mat.Dense
	jtj.Mul(J.T(), J)

	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil
		}
	}
	inv.Scale(rss/float64(n-3), &inv)

	cov := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == 0 || j == 0 {
				cov.Set(i, j, math.NaN())
				continue
			}
			v := inv.At(i-1, j-1)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil
			}
			cov.Set(i, j, v)
		}
	}
	return cov
}
