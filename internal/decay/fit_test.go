package decay_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/HamletTheHamster/xray-flare-loops/internal/decay"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"github.com/smartystreets/goconvey/convey"
)

const cadence = 2. / 60. / 24. // 2 min in days

// synthetic builds a TESS-like segment from the exact model, sampled on a
// cadence grid through t0, and the catalog event that describes it.
func synthetic(t0, tau, a float64) (flare.Segment, flare.Event) {
	return shifted(t0, tau, a, 0)
}

// shifted is synthetic on a grid offset shift days before t0. The catalog
// peak is the first sample at or after t0.
func shifted(t0, tau, a, shift float64) (flare.Segment, flare.Event) {
	ev := flare.Event{
		Sector:    12,
		Start:     t0 - 5*cadence,
		Peak:      math.NaN(),
		Stop:      t0 + 3*tau,
		Amplitude: a,
	}
	seg := flare.Segment{Sector: 12}
	grid := t0 - shift
	kmax := int((ev.Stop+0.03-grid)/cadence) + 1
	for k := -30; k <= kmax; k++ {
		tk := grid + float64(k)*cadence
		if tk > ev.Start-0.03 && tk < ev.Stop+0.03 {
			seg.Samples = append(seg.Samples, flare.Sample{Time: tk, Flux: decay.Model(tk, t0, tau, a)})
		}
		if tk >= t0 && math.IsNaN(ev.Peak) {
			ev.Peak = tk
		}
	}
	return seg, ev
}

func TestModel(t *testing.T) {
	convey.Convey("Given the decay model", t, func() {
		convey.So(decay.Model(0.9, 1, 0.1, 0.5), convey.ShouldEqual, 1.0)
		convey.So(decay.Model(1, 1, 0.1, 0.5), convey.ShouldEqual, 1.5)
		convey.So(decay.Model(1.1, 1, 0.1, 0.5), convey.ShouldAlmostEqual, 1+0.5/math.E, 1e-12)
	})
}

func TestFit(t *testing.T) {
	convey.Convey("Given a light curve generated from the exact model", t, func() {
		t0 := 1600.
		seg, ev := synthetic(t0, 0.02, 0.5)

		fitter := decay.NewFitter()
		fit, err := fitter.Fit(seg, ev)

		convey.Convey("Then the parameters are recovered", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(fit.T0/t0, convey.ShouldAlmostEqual, 1, 1e-6)
			convey.So(fit.Tau/0.02, convey.ShouldAlmostEqual, 1, 1e-6)
			convey.So(fit.Amplitude/0.5, convey.ShouldAlmostEqual, 1, 1e-6)
			convey.So(fit.RSS, convey.ShouldBeLessThan, 1e-10)
			convey.So(fit.N, convey.ShouldEqual, seg.Len())
			convey.So(fit.AtBound, convey.ShouldBeFalse)
		})

		convey.Convey("Then the fitted curve reproduces the data", func() {
			model := fit.Eval(seg.Times())
			for i, y := range seg.Fluxes() {
				convey.So(model[i], convey.ShouldAlmostEqual, y, 1e-6)
			}
		})

		convey.Convey("Then the parameters stay within their bounds", func() {
			b := decay.DefaultBounds(ev)
			convey.So(fit.T0, convey.ShouldBeBetween, b.T0Min, b.T0Max)
			convey.So(fit.Tau, convey.ShouldBeBetweenOrEqual, b.TauMin, b.TauMax)
			convey.So(fit.Amplitude, convey.ShouldBeBetweenOrEqual, b.AMin, b.AMax)
		})

		convey.Convey("Then only the e-folding time and amplitude carry errors", func() {
			errs := fit.Errors()
			convey.So(math.IsNaN(errs[0]), convey.ShouldBeTrue)
			convey.So(math.IsNaN(errs[1]), convey.ShouldBeFalse)
			convey.So(math.IsNaN(errs[2]), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given catalog guesses away from the truth", t, func() {
		t0, tau, a := 1600., 0.02, 0.5

		cases := []struct {
			name      string
			amplitude float64
			shift     float64
		}{
			{"an amplitude 3 per mille high", 1.003 * a, 0},
			{"an amplitude 2 per mille low", 0.998 * a, 0},
			{"an onset between two samples", a, 0.4 * cadence},
		}

		for _, c := range cases {
			convey.Convey("With "+c.name+" the decay is recovered", func() {
				seg, ev := shifted(t0, tau, a, c.shift)
				ev.Amplitude = c.amplitude

				fit, err := decay.NewFitter().Fit(seg, ev)
				convey.So(err, convey.ShouldBeNil)
				convey.So(fit.Tau/tau, convey.ShouldAlmostEqual, 1, 1e-6)
				convey.So(fit.T0, convey.ShouldBeBetweenOrEqual, t0-1e-9, t0+cadence)
				// Between samples t0 and A trade off, the curve does not.
				convey.So(fit.Amplitude*math.Exp((fit.T0-t0)/fit.Tau)/a, convey.ShouldAlmostEqual, 1, 1e-6)
				convey.So(fit.RSS, convey.ShouldBeLessThan, 1e-10)
			})
		}
	})

	convey.Convey("Given a light curve with photometric noise", t, func() {
		t0, tau, a := 1600., 0.02, 0.5
		seg, ev := synthetic(t0, tau, a)
		rng := rand.New(rand.NewSource(1))
		for i := range seg.Samples {
			seg.Samples[i].Flux += 1e-3 * rng.NormFloat64()
		}

		fit, err := decay.NewFitter().Fit(seg, ev)

		convey.Convey("Then the e-folding time moves off the guess to the truth", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(fit.Tau/tau, convey.ShouldAlmostEqual, 1, 1e-2)
			convey.So(math.Abs(fit.T0-t0), convey.ShouldBeLessThanOrEqualTo, cadence)
			convey.So(fit.Amplitude/a, convey.ShouldAlmostEqual, 1, 1e-2)
			convey.So(fit.RSS, convey.ShouldBeLessThan, 2*float64(seg.Len())*1e-6)
		})
	})

	convey.Convey("Given a fit capped at a single iteration", t, func() {
		seg, ev := synthetic(1600, 0.02, 0.5)
		_, err := decay.NewFitter(decay.WithIterations(1)).Fit(seg, ev)

		convey.Convey("Then it reports no convergence", func() {
			convey.So(errors.Is(err, decay.ErrNoConvergence), convey.ShouldBeTrue)
		})
	})
}

func TestFitPreconditions(t *testing.T) {
	convey.Convey("Given a valid synthetic flare", t, func() {
		seg, ev := synthetic(1500, 0.01, 0.3)
		fitter := decay.NewFitter()

		convey.Convey("It passes the precondition check", func() {
			convey.So(fitter.Check(seg, ev), convey.ShouldBeNil)
		})

		convey.Convey("A peak equal to the stop time is rejected", func() {
			ev.Peak = ev.Stop
			_, err := fitter.Fit(seg, ev)
			convey.So(errors.Is(err, decay.ErrInvalidWindow), convey.ShouldBeTrue)
			convey.So(errors.Is(err, flare.ErrInvalidEvent), convey.ShouldBeTrue)
		})

		convey.Convey("A window of a day or more is rejected, not clamped", func() {
			ev.Stop = ev.Start + 2.5
			_, err := fitter.Fit(seg, ev)
			convey.So(errors.Is(err, decay.ErrInvalidWindow), convey.ShouldBeTrue)
		})

		convey.Convey("A segment without pre-flare baseline is rejected", func() {
			cut := seg.Between(ev.Start, math.Inf(1))
			_, err := fitter.Fit(cut, ev)
			convey.So(errors.Is(err, decay.ErrInvalidWindow), convey.ShouldBeTrue)
		})

		convey.Convey("A baseline shorter than the pad is rejected", func() {
			cut := seg.Between(ev.Start-0.01, math.Inf(1))
			convey.So(errors.Is(fitter.Check(cut, ev), decay.ErrInvalidWindow), convey.ShouldBeTrue)

			convey.So(decay.NewFitter(decay.WithPad(0.005)).Check(cut, ev), convey.ShouldBeNil)
		})

		convey.Convey("A tail shorter than the pad is rejected", func() {
			cut := seg.Between(math.Inf(-1), ev.Stop+0.01)
			convey.So(errors.Is(fitter.Check(cut, ev), decay.ErrInvalidWindow), convey.ShouldBeTrue)
		})

		convey.Convey("A segment ending inside the flare is rejected", func() {
			cut := seg.Between(math.Inf(-1), ev.Stop)
			_, err := fitter.Fit(cut, ev)
			convey.So(errors.Is(err, decay.ErrInvalidWindow), convey.ShouldBeTrue)
		})

		convey.Convey("Custom bounds that exclude the guess are rejected", func() {
			f := decay.NewFitter(decay.WithBounds(func(e flare.Event) decay.Bounds {
				b := decay.DefaultBounds(e)
				b.TauMax = e.HalfWidth() / 2
				return b
			}))
			convey.So(errors.Is(f.Check(seg, ev), decay.ErrInvalidWindow), convey.ShouldBeTrue)
		})
	})
}

func TestFitBatch(t *testing.T) {
	convey.Convey("Given a batch with one malformed flare", t, func() {
		seg1, ev1 := synthetic(1500, 0.01, 0.3)
		seg2, ev2 := synthetic(1510, 0.02, 0.2)
		ev2.Peak = ev2.Stop
		seg3, ev3 := synthetic(1520, 0.015, 0.4)

		outcomes := decay.NewFitter().FitBatch([]flare.Window{
			{Event: ev1, Segment: seg1},
			{Event: ev2, Segment: seg2},
			{Event: ev3, Segment: seg3},
		})

		convey.Convey("Then every window gets an outcome in input order", func() {
			convey.So(outcomes, convey.ShouldHaveLength, 3)
			convey.So(outcomes[0].Window.Event.Start, convey.ShouldEqual, ev1.Start)
			convey.So(outcomes[2].Window.Event.Start, convey.ShouldEqual, ev3.Start)
		})

		convey.Convey("Then only the malformed flare fails", func() {
			convey.So(outcomes[0].Err, convey.ShouldBeNil)
			convey.So(errors.Is(outcomes[1].Err, decay.ErrInvalidWindow), convey.ShouldBeTrue)
			convey.So(outcomes[2].Err, convey.ShouldBeNil)
			convey.So(outcomes[2].Fit.Tau, convey.ShouldBeGreaterThan, 0)
		})
	})
}

func TestOMBounds(t *testing.T) {
	convey.Convey("Given an OM flare in seconds", t, func() {
		ev := flare.Event{Start: 0, Peak: 100, Stop: 160, Amplitude: 2}
		b := decay.OMBounds(ev)

		convey.So(b.T0Min, convey.ShouldEqual, 90.0)
		convey.So(b.T0Max, convey.ShouldEqual, 110.0)
		convey.So(b.TauMin, convey.ShouldEqual, 1.0)
		convey.So(b.TauMax, convey.ShouldEqual, 100.0)
		convey.So(b.AMin, convey.ShouldAlmostEqual, 1.9, 1e-12)
		convey.So(b.AMax, convey.ShouldAlmostEqual, 2.00694, 1e-12)
	})
}
