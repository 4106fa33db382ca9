package flare_test

import (
	"errors"
	"testing"

	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"github.com/smartystreets/goconvey/convey"
)

func TestEventValidate(t *testing.T) {
	convey.Convey("Given a flare event", t, func() {
		ev := flare.Event{Sector: 12, Start: 10.0, Peak: 10.01, Stop: 10.1, Amplitude: 0.4}

		convey.Convey("A well ordered event is valid", func() {
			convey.So(ev.Validate(1), convey.ShouldBeNil)
			convey.So(ev.HalfWidth(), convey.ShouldAlmostEqual, 0.05, 1e-12)
		})

		convey.Convey("A peak on the stop time is rejected", func() {
			ev.Peak = ev.Stop
			convey.So(errors.Is(ev.Validate(1), flare.ErrInvalidEvent), convey.ShouldBeTrue)
		})

		convey.Convey("A peak before the start is rejected", func() {
			ev.Peak = 9.9
			convey.So(errors.Is(ev.Validate(1), flare.ErrInvalidEvent), convey.ShouldBeTrue)
		})

		convey.Convey("A window of two days or more is rejected", func() {
			ev.Stop = 12.5
			convey.So(errors.Is(ev.Validate(1), flare.ErrInvalidEvent), convey.ShouldBeTrue)
		})

		convey.Convey("A non-positive amplitude is rejected", func() {
			ev.Amplitude = 0
			convey.So(errors.Is(ev.Validate(1), flare.ErrInvalidEvent), convey.ShouldBeTrue)
		})

		convey.Convey("The name carries sector and start", func() {
			convey.So(ev.Name(), convey.ShouldEqual, "sector 12 flare at 10.00000")
		})
	})
}

func TestSegment(t *testing.T) {
	convey.Convey("Given an unordered segment", t, func() {
		seg := flare.Segment{Sector: 37, Samples: []flare.Sample{
			{Time: 3, Flux: 1.3}, {Time: 1, Flux: 1.1}, {Time: 2, Flux: 1.2}, {Time: 4, Flux: 1.4},
		}}
		seg.Sort()

		convey.Convey("Sort orders by time", func() {
			convey.So(seg.Times(), convey.ShouldResemble, []float64{1, 2, 3, 4})
			convey.So(seg.Fluxes(), convey.ShouldResemble, []float64{1.1, 1.2, 1.3, 1.4})
		})

		convey.Convey("Between is exclusive on both ends", func() {
			cut := seg.Between(1, 4)
			convey.So(cut.Sector, convey.ShouldEqual, 37)
			convey.So(cut.Times(), convey.ShouldResemble, []float64{2, 3})
		})
	})
}
