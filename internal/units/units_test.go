package units_test

import (
	"errors"
	"math"
	"testing"

	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
	"github.com/HamletTheHamster/xray-flare-loops/internal/units"
	"github.com/smartystreets/goconvey/convey"
)

func TestLoopScalingLaws(t *testing.T) {
	convey.Convey("Given the loop scaling laws", t, func() {

		convey.Convey("They return the normalisation points", func() {
			convey.So(units.FlareLoopSize(1e48, 1e9, 1e7), convey.ShouldEqual, 1e9)
			convey.So(units.FlareMagneticField(1e48, 1e9, 1e7), convey.ShouldEqual, 50.0)
		})

		convey.Convey("Doubling EM scales them by the documented exponents", func() {
			em, n0, T := 3.2e50, 1e11, 2.4e7
			l1, l2 := units.FlareLoopSize(em, n0, T), units.FlareLoopSize(2*em, n0, T)
			b1, b2 := units.FlareMagneticField(em, n0, T), units.FlareMagneticField(2*em, n0, T)
			convey.So(l2/l1, convey.ShouldAlmostEqual, math.Pow(2, 0.6), 1e-12)
			convey.So(b2/b1, convey.ShouldAlmostEqual, math.Pow(2, -0.2), 1e-12)
		})

		convey.Convey("Density and temperature enter with their own exponents", func() {
			convey.So(units.FlareLoopSize(1e48, 1e10, 1e7), convey.ShouldAlmostEqual, 1e9*math.Pow(10, -0.4), 1e-3)
			convey.So(units.FlareMagneticField(1e48, 1e9, 2e7), convey.ShouldAlmostEqual, 50*math.Pow(2, 1.7), 1e-12)
		})

		convey.Convey("Loop size from rise time follows 0.6 psi^2 sqrt(T) t", func() {
			convey.So(units.FlareLoopSizeFromDuration(1e3, 1e6, 1.2), convey.ShouldAlmostEqual, 0.6*1.44*1e3*1e3, 1e-6)
			convey.So(units.ApexTemperature(1), convey.ShouldEqual, 0.13)
		})
	})
}

func TestNormToEM(t *testing.T) {
	convey.Convey("Given an APEC norm", t, func() {
		norm := 2.5e-4
		d := 13.7 * 3.0856775814913673e18
		want := math.Log10(1e14 * 4 * math.Pi * d * d * norm)

		convey.Convey("It converts at the default distance", func() {
			convey.So(units.NormToEM(norm), convey.ShouldEqual, want)
		})

		convey.Convey("Ten times the norm adds one dex", func() {
			convey.So(units.NormToEM(10*norm)-units.NormToEM(norm), convey.ShouldAlmostEqual, 1, 1e-12)
		})

		convey.Convey("Doubling the distance adds log10(4)", func() {
			convey.So(units.NormToEMAt(norm, 27.4)-units.NormToEM(norm), convey.ShouldAlmostEqual, math.Log10(4), 1e-12)
		})
	})
}

func TestFlareFactor(t *testing.T) {
	convey.Convey("Given a flat passband", t, func() {
		var wav, resp []float64
		for w := 600.; w <= 1000.; w += 5 {
			wav = append(wav, w)
			resp = append(resp, 1)
		}
		r := 0.145 * config.SolarRadiusCM

		convey.Convey("Equal temperatures give pi R^2 sigma T^4", func() {
			f, err := units.FlareFactor(10000, 0.145, wav, resp, 10000)
			convey.So(err, convey.ShouldBeNil)
			want := math.Pi * r * r * config.StefanBoltzmannCGS * 1e16
			convey.So(f/want, convey.ShouldAlmostEqual, 1, 1e-12)
		})

		convey.Convey("A cool star gives a smaller factor than the flare itself", func() {
			f, err := units.FlareFactor(2680, 0.145, wav, resp, 10000)
			convey.So(err, convey.ShouldBeNil)
			convey.So(f, convey.ShouldBeGreaterThan, 0)
			convey.So(f, convey.ShouldBeLessThan, math.Pi*r*r*config.StefanBoltzmannCGS*1e16)
		})

		convey.Convey("Mismatched arrays are rejected", func() {
			_, err := units.FlareFactor(2680, 0.145, wav, resp[1:], 10000)
			convey.So(errors.Is(err, units.ErrBadBand), convey.ShouldBeTrue)
		})

		convey.Convey("A zero response cannot be divided by", func() {
			zero := make([]float64, len(wav))
			_, err := units.FlareFactor(2680, 0.145, wav, zero, 10000)
			convey.So(errors.Is(err, units.ErrDivideByZero), convey.ShouldBeTrue)
		})
	})
}

func TestActivity(t *testing.T) {
	convey.Convey("Given V and Ks magnitudes", t, func() {

		convey.Convey("The turnover time follows Wright et al. 2018", func() {
			convey.So(units.ConvectiveTurnoverTime(12, 6), convey.ShouldAlmostEqual, math.Pow(10, 0.64+1.5), 1e-9)
			hi, lo := units.ConvectiveTurnoverBounds(12, 6, 0.1, 0.1)
			convey.So(hi, convey.ShouldBeGreaterThan, lo)
		})

		convey.Convey("The Rossby number refuses a zero turnover time", func() {
			ro, err := units.RossbyNumber(0.19, 2)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ro, convey.ShouldAlmostEqual, 0.095, 1e-12)
			_, err = units.RossbyNumber(0.19, 0)
			convey.So(errors.Is(err, units.ErrDivideByZero), convey.ShouldBeTrue)
		})
	})
}

func TestDecayTimescales(t *testing.T) {
	convey.Convey("Given the reconnection timescale laws", t, func() {
		E, n, ma := 1e32, 1e11, 0.01

		convey.Convey("A stronger field shortens the decay as B^-5/3", func() {
			t1 := units.DecayTimeFromField(E, 100, n, ma)
			t2 := units.DecayTimeFromField(E, 200, n, ma)
			convey.So(t2/t1, convey.ShouldAlmostEqual, math.Pow(2, -5./3.), 1e-12)
		})

		convey.Convey("A longer loop lengthens the decay as L^5/2", func() {
			t1 := units.DecayTimeFromLoop(E, 1e9, n, ma)
			t2 := units.DecayTimeFromLoop(E, 2e9, n, ma)
			convey.So(t2/t1, convey.ShouldAlmostEqual, math.Pow(2, 2.5), 1e-12)
		})

		convey.Convey("Days convert to minutes", func() {
			convey.So(units.DaysToMinutes(0.05), convey.ShouldAlmostEqual, 72, 1e-12)
		})
	})
}
