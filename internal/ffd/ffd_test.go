package ffd_test

import (
	"errors"
	"math"
	"testing"

	"github.com/HamletTheHamster/xray-flare-loops/internal/ffd"
	"github.com/smartystreets/goconvey/convey"
)

func TestCumulativeRate(t *testing.T) {
	convey.Convey("Given alpha = 2 and beta = 1", t, func() {
		r1, err := ffd.CumulativeRate(1, 2, 1)
		convey.So(err, convey.ShouldBeNil)
		convey.So(r1, convey.ShouldAlmostEqual, 1.0, 1e-12)

		r10, err := ffd.CumulativeRate(10, 2, 1)
		convey.So(err, convey.ShouldBeNil)
		convey.So(r10, convey.ShouldAlmostEqual, 0.1, 1e-12)
	})

	convey.Convey("Given a realistic FFD the rate never increases with energy", t, func() {
		p := ffd.Params{Alpha: 1.84, Beta: 3.2e25}
		prev := math.Inf(1)
		for _, e := range ffd.LogGrid(1e30, 1e35, 50) {
			r, err := p.Rate(e)
			convey.So(err, convey.ShouldBeNil)
			convey.So(r, convey.ShouldBeLessThanOrEqualTo, prev)
			prev = r
		}
	})

	convey.Convey("Given parameters outside the domain", t, func() {
		_, err := ffd.CumulativeRate(1e31, 1, 1)
		convey.So(errors.Is(err, ffd.ErrDomain), convey.ShouldBeTrue)

		_, err = ffd.CumulativeRate(0, 2, 1)
		convey.So(errors.Is(err, ffd.ErrDomain), convey.ShouldBeTrue)

		_, err = ffd.RateAboveThreshold(-1, 2, 1)
		convey.So(errors.Is(err, ffd.ErrDomain), convey.ShouldBeTrue)
	})
}

func TestLogRateAbove(t *testing.T) {
	convey.Convey("Given alpha = 2 and beta = 1e31", t, func() {
		p := ffd.Params{Alpha: 2, Beta: 1e31}
		r, err := p.LogRateAbove(31.5)
		convey.So(err, convey.ShouldBeNil)
		convey.So(r, convey.ShouldAlmostEqual, -0.5, 1e-12)
	})
}

func TestToEnergy(t *testing.T) {
	convey.Convey("Given an FFD fitted in equivalent duration", t, func() {
		ed := ffd.Params{Alpha: 1.9, Beta: 12, BetaLowErr: 2, BetaUpErr: 3}
		factor := 3.5e30

		en, err := ed.ToEnergy(factor)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the rate above E matches the rate above E/factor", func() {
			for _, d := range []float64{1, 10, 100, 1000} {
				want, _ := ed.Rate(d)
				got, _ := en.Rate(d * factor)
				convey.So(got/want, convey.ShouldAlmostEqual, 1, 1e-9)
			}
			convey.So(en.Alpha, convey.ShouldEqual, ed.Alpha)
			convey.So(en.BetaUpErr/en.Beta, convey.ShouldAlmostEqual, 0.25, 1e-12)
		})

		convey.Convey("Then a non-positive factor is rejected", func() {
			_, err := ed.ToEnergy(0)
			convey.So(errors.Is(err, ffd.ErrDomain), convey.ShouldBeTrue)
		})
	})
}

func TestEnvelope(t *testing.T) {
	convey.Convey("Given an FFD with asymmetric errors", t, func() {
		p := ffd.Params{
			Alpha: 2, Beta: 1,
			AlphaLowErr: 0.1, AlphaUpErr: 0.2,
			BetaLowErr: 0.5, BetaUpErr: 1,
		}
		c, err := p.Envelope([]float64{1, 10})
		convey.So(err, convey.ShouldBeNil)

		convey.So(c.Mid[1], convey.ShouldAlmostEqual, 0.1, 1e-12)
		convey.So(c.High[1], convey.ShouldAlmostEqual, 2/1.2*math.Pow(10, -1.2), 1e-12)
		convey.So(c.Low[1], convey.ShouldAlmostEqual, 0.5/0.9*math.Pow(10, -0.9), 1e-12)
		convey.So(c.Energy, convey.ShouldResemble, []float64{1, 10})
	})

	convey.Convey("Given errors that push alpha below 1", t, func() {
		p := ffd.Params{Alpha: 1.05, Beta: 1, AlphaLowErr: 0.1}
		_, err := p.Envelope([]float64{1})
		convey.So(errors.Is(err, ffd.ErrDomain), convey.ShouldBeTrue)
	})
}

func TestEDAndFreq(t *testing.T) {
	convey.Convey("Given ascending energies over 10 days", t, func() {
		pts, err := ffd.EDAndFreq([]float64{1, 2, 4, 8}, 10)
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(pts), convey.ShouldEqual, 4)
		convey.So(pts[0].Count, convey.ShouldEqual, 4)
		convey.So(pts[0].Freq, convey.ShouldAlmostEqual, 0.4, 1e-12)
		convey.So(pts[3].Count, convey.ShouldEqual, 1)
		convey.So(pts[3].Freq, convey.ShouldAlmostEqual, 0.1, 1e-12)
	})

	convey.Convey("Given unsorted energies", t, func() {
		_, err := ffd.EDAndFreq([]float64{1, 4, 2}, 10)
		convey.So(errors.Is(err, ffd.ErrUnsorted), convey.ShouldBeTrue)

		_, err = ffd.FitPowerLaw([]float64{1, 4, 2}, 10)
		convey.So(errors.Is(err, ffd.ErrUnsorted), convey.ShouldBeTrue)
	})

	convey.Convey("Given no observing time", t, func() {
		_, err := ffd.EDAndFreq([]float64{1}, 0)
		convey.So(errors.Is(err, ffd.ErrDomain), convey.ShouldBeTrue)
	})
}

func TestFitCumulative(t *testing.T) {
	convey.Convey("Given rates drawn from an exact power law", t, func() {
		alpha, beta := 1.8, 1e24
		energies := ffd.LogGrid(1e31, 1e34, 20)
		rates := make([]float64, len(energies))
		for i, e := range energies {
			rates[i], _ = ffd.CumulativeRate(e, alpha, beta)
		}

		p, err := ffd.FitCumulative(energies, rates)

		convey.Convey("Then alpha and beta are recovered", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(p.Alpha, convey.ShouldAlmostEqual, alpha, 1e-6)
			convey.So(math.Log10(p.Beta), convey.ShouldAlmostEqual, 24, 1e-5)
			convey.So(p.AlphaUpErr, convey.ShouldBeLessThan, 1e-6)
			convey.So(p.BetaLowErr, convey.ShouldBeGreaterThanOrEqualTo, 0.0)
		})
	})

	convey.Convey("Given a fit capped at a single iteration", t, func() {
		energies := ffd.LogGrid(1e31, 1e34, 20)
		rates := make([]float64, len(energies))
		for i, e := range energies {
			rates[i], _ = ffd.CumulativeRate(e, 1.8, 1e24)
		}

		_, err := ffd.FitCumulative(energies, rates, ffd.WithIterations(1))
		convey.So(errors.Is(err, ffd.ErrNoConvergence), convey.ShouldBeTrue)
	})

	convey.Convey("Given too few flares", t, func() {
		_, err := ffd.FitCumulative([]float64{1, 2}, []float64{2, 1})
		convey.So(errors.Is(err, ffd.ErrDomain), convey.ShouldBeTrue)
	})

	convey.Convey("Given a ranked flare sample", t, func() {
		energies := []float64{1e31, 1.5e31, 2.1e31, 3.9e31, 7e31, 1.2e32, 4e32, 1.1e33}
		p, err := ffd.FitPowerLaw(energies, 80)
		convey.So(err, convey.ShouldBeNil)
		convey.So(p.Alpha, convey.ShouldBeGreaterThan, 1.0)
		convey.So(p.BetaUpErr, convey.ShouldBeGreaterThan, 0.0)
		convey.So(p.BetaLowErr, convey.ShouldBeGreaterThan, 0.0)
	})
}
