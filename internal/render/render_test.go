package render_test

import (
	"errors"
	"fmt"
	"image/gif"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/HamletTheHamster/xray-flare-loops/internal/decay"
	"github.com/HamletTheHamster/xray-flare-loops/internal/ffd"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"github.com/HamletTheHamster/xray-flare-loops/internal/render"
	"github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/plot/vg"
)

func init() {
	render.Size = 4 * vg.Inch
}

func window() (flare.Window, decay.Fit) {
	ev := flare.Event{Sector: 12, Start: 10, Peak: 10.01, Stop: 10.1, Amplitude: 0.4}
	fit := decay.Fit{T0: 10.01, Tau: 0.02, Amplitude: 0.4}
	seg := flare.Segment{Sector: 12}
	for k := 0; k < 100; k++ {
		t := 9.97 + float64(k)*0.0015
		seg.Samples = append(seg.Samples, flare.Sample{Time: t, Flux: decay.Model(t, fit.T0, fit.Tau, fit.Amplitude)})
	}
	return flare.Window{Event: ev, Segment: seg}, fit
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestDecayFit(t *testing.T) {
	convey.Convey("Given a fitted flare window", t, func() {
		w, fit := window()
		p, err := render.DecayFit(w, fit, "Time [BJD - 2457000]")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then it saves in all three formats", func() {
			dir := filepath.Join(t.TempDir(), "run")
			png, err := render.Save(p, dir, "expfit_flare_12_0")
			convey.So(err, convey.ShouldBeNil)
			convey.So(exists(png), convey.ShouldBeTrue)
			convey.So(exists(filepath.Join(dir, "expfit_flare_12_0.svg")), convey.ShouldBeTrue)
			convey.So(exists(filepath.Join(dir, "expfit_flare_12_0.pdf")), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an empty window", t, func() {
		_, err := render.DecayFit(flare.Window{}, decay.Fit{}, "")
		convey.So(errors.Is(err, render.ErrEmpty), convey.ShouldBeTrue)
	})
}

func TestFFD(t *testing.T) {
	convey.Convey("Given a flare sample and its power law", t, func() {
		pts, err := ffd.EDAndFreq([]float64{1e31, 2e31, 5e31, 1e32}, 100)
		convey.So(err, convey.ShouldBeNil)
		params := ffd.Params{Alpha: 1.8, Beta: 1e23, AlphaLowErr: 0.1, AlphaUpErr: 0.1, BetaLowErr: 5e22, BetaUpErr: 5e22}
		curve, err := params.Envelope(ffd.LogGrid(3.7e29, 2e32, 10))
		convey.So(err, convey.ShouldBeNil)

		om := render.Marker{Label: "OM", X: 3.7e30, Y: 0.2, XLow: 4e29, XHigh: 4e29, YLow: 0.1, YHigh: 0.2}
		p, err := render.FFD(pts, curve, "alpha = 1.8", om)
		convey.So(err, convey.ShouldBeNil)

		_, err = render.Save(p, t.TempDir(), "ffd")
		convey.So(err, convey.ShouldBeNil)
	})
}

func TestBLRelation(t *testing.T) {
	convey.Convey("Given reconnection curves and flares", t, func() {
		e := ffd.LogGrid(2e29, 1e35, 20)
		y := make([]float64, len(e))
		for i := range e {
			y[i] = 1e-9 * e[i] / 1e30 * 10
		}
		fields := []render.Curve{{Label: "30 G", X: e, Y: y}}
		loops := []render.Curve{{Label: "10^{10} cm", X: e, Y: y}}

		p, err := render.BLRelation(fields, loops, []float64{1e31, 1e32}, []float64{5, 20},
			render.Marker{Label: "OM flare", X: 3.7e30, Y: 1. / 6})
		convey.So(err, convey.ShouldBeNil)

		_, err = render.Save(p, t.TempDir(), "tess_flares_B_L_relation")
		convey.So(err, convey.ShouldBeNil)
	})
}

func TestEFoldHistogram(t *testing.T) {
	convey.Convey("Given e-folding times", t, func() {
		p, err := render.EFoldHistogram([]float64{3, 5, 8, 13, 21, 34}, 4)
		convey.So(err, convey.ShouldBeNil)
		_, err = render.Save(p, t.TempDir(), "efold_hist")
		convey.So(err, convey.ShouldBeNil)

		_, err = render.EFoldHistogram(nil, 4)
		convey.So(errors.Is(err, render.ErrEmpty), convey.ShouldBeTrue)
	})
}

func TestEFoldBySector(t *testing.T) {
	convey.Convey("Given e-folding times of two sectors", t, func() {
		values := map[int][]float64{12: {3, 5, 8, 9}, 37: {13, 21}}
		p, err := render.EFoldBySector([]int{12, 37, 39}, values)
		convey.So(err, convey.ShouldBeNil)
		_, err = render.Save(p, t.TempDir(), "efold_box")
		convey.So(err, convey.ShouldBeNil)

		_, err = render.EFoldBySector([]int{39}, values)
		convey.So(errors.Is(err, render.ErrEmpty), convey.ShouldBeTrue)
	})
}

func TestAnimate(t *testing.T) {
	convey.Convey("Given two saved figures", t, func() {
		dir := t.TempDir()
		var frames []string
		for i, v := range [][]float64{{3, 5, 8}, {13, 21, 34}} {
			p, err := render.EFoldHistogram(v, 3)
			convey.So(err, convey.ShouldBeNil)
			path, err := render.Save(p, dir, fmt.Sprintf("frame%d", i))
			convey.So(err, convey.ShouldBeNil)
			frames = append(frames, path)
		}

		convey.Convey("When they are animated", func() {
			out := filepath.Join(dir, "fits.gif")
			err := render.Animate(frames, out, 50)

			convey.Convey("Then the GIF holds one image per frame", func() {
				convey.So(err, convey.ShouldBeNil)
				f, err := os.Open(out)
				convey.So(err, convey.ShouldBeNil)
				defer f.Close()
				g, err := gif.DecodeAll(f)
				convey.So(err, convey.ShouldBeNil)
				convey.So(g.Image, convey.ShouldHaveLength, 2)
				convey.So(g.Delay, convey.ShouldResemble, []int{50, 50})
			})
		})

		convey.Convey("When there are no frames", func() {
			err := render.Animate(nil, filepath.Join(dir, "none.gif"), 50)

			convey.Convey("Then nothing is written", func() {
				convey.So(errors.Is(err, render.ErrEmpty), convey.ShouldBeTrue)
			})
		})
	})
}

func TestRunDir(t *testing.T) {
	convey.Convey("Given a run started at a fixed time", t, func() {
		now := time.Date(2023, time.March, 4, 13, 5, 9, 0, time.UTC)
		convey.So(render.RunDir("plots", "", now), convey.ShouldEqual, filepath.Join("plots", "2023-Mar-04", "13:05:09"))
		convey.So(render.RunDir("plots", "tic277", now), convey.ShouldEqual, filepath.Join("plots", "2023-Mar-04", "13:05:09: tic277"))
	})
}

func TestPreview(t *testing.T) {
	convey.Convey("Given a quick-look series", t, func() {
		s := render.Series{Name: "efold", X: []float64{1, 2, 3}, Y: []float64{4, 5, 6}}
		path := filepath.Join(t.TempDir(), "preview.png")

		if _, err := exec.LookPath("gnuplot"); err != nil {
			err := render.Preview(path, "t", "x", "y", s)
			convey.So(errors.Is(err, render.ErrNoGnuplot), convey.ShouldBeTrue)
			return
		}

		convey.So(render.Preview(path, "t", "x", "y", s), convey.ShouldBeNil)

		bad := render.Series{Name: "bad", X: []float64{1}, Y: nil}
		err := render.Preview(path, "t", "x", "y", bad)
		convey.So(errors.Is(err, render.ErrLength), convey.ShouldBeTrue)
	})
}
