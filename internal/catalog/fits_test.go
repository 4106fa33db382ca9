package catalog_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/HamletTheHamster/xray-flare-loops/internal/catalog"
	"github.com/astrogo/fitsio"
	"github.com/smartystreets/goconvey/convey"
)

type lcRow struct {
	Time  float64 `fits:"TIME"`
	Flux  float32 `fits:"FLUX"`
	Detr  float64 `fits:"DETRENDED_FLUX"`
	Other int32   `fits:"QUALITY"`
}

type chainRow struct {
	T1    float64 `fits:"kT__1"`
	Norm1 float64 `fits:"norm__16"`
	T2    float64 `fits:"kT__17"`
	Norm2 float64 `fits:"norm__32"`
}

// writeFITS writes rows into the first binary-table extension of a new file.
func writeFITS(t *testing.T, cols []fitsio.Column, rows ...interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.fits")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		t.Fatal(err)
	}
	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Write(phdu); err != nil {
		t.Fatal(err)
	}

	tbl, err := fitsio.NewTable("DATA", cols, fitsio.BINARY_TBL)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if err := tbl.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Write(tbl); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadLightCurveFITS(t *testing.T) {
	convey.Convey("Given a detrended TESS light curve with a NaN cadence", t, func() {
		cols := []fitsio.Column{
			{Name: "TIME", Format: "D"},
			{Name: "FLUX", Format: "E"},
			{Name: "DETRENDED_FLUX", Format: "D"},
			{Name: "QUALITY", Format: "J"},
		}
		path := writeFITS(t, cols,
			&lcRow{Time: 1600.2, Flux: 101, Detr: 1.01},
			&lcRow{Time: 1600.1, Flux: 99, Detr: 0.99},
			&lcRow{Time: math.NaN(), Flux: 100, Detr: 1},
		)

		seg, err := catalog.ReadLightCurveFITS(path, 12)

		convey.So(err, convey.ShouldBeNil)
		convey.So(seg.Sector, convey.ShouldEqual, 12)
		convey.So(seg.Times(), convey.ShouldResemble, []float64{1600.1, 1600.2})
		convey.So(seg.Samples[0].RawFlux, convey.ShouldEqual, 99.0)
		convey.So(seg.Samples[1].Flux, convey.ShouldEqual, 1.01)

		convey.Convey("Then ReadLightCurve picks the FITS reader by extension", func() {
			auto, err := catalog.ReadLightCurve(path, 12)
			convey.So(err, convey.ShouldBeNil)
			convey.So(auto.Times(), convey.ShouldResemble, seg.Times())

			csvPath := writeFile(t, "lc.CSV", "time,detrended_flux\n1.0,0.99\n")
			auto, err = catalog.ReadLightCurve(csvPath, 37)
			convey.So(err, convey.ShouldBeNil)
			convey.So(auto.Sector, convey.ShouldEqual, 37)
			convey.So(auto.Times(), convey.ShouldResemble, []float64{1})
		})
	})

	convey.Convey("Given a table without detrended flux", t, func() {
		path := writeFITS(t, []fitsio.Column{{Name: "TIME", Format: "D"}}, &struct {
			Time float64 `fits:"TIME"`
		}{1})

		_, err := catalog.ReadLightCurveFITS(path, 12)
		convey.So(errors.Is(err, catalog.ErrMissingColumn), convey.ShouldBeTrue)
	})
}

func TestReadChain(t *testing.T) {
	convey.Convey("Given a short two-temperature chain", t, func() {
		cols := []fitsio.Column{
			{Name: "kT__1", Format: "D"},
			{Name: "norm__16", Format: "D"},
			{Name: "kT__17", Format: "D"},
			{Name: "norm__32", Format: "D"},
		}
		path := writeFITS(t, cols,
			&chainRow{T1: 9, Norm1: 9, T2: 9, Norm2: 9},
			&chainRow{T1: 0.25, Norm1: 2e-6, T2: 1, Norm2: 5e-6},
			&chainRow{T1: 0.5, Norm1: 3e-6, T2: 2, Norm2: 6e-6},
		)

		chain, err := catalog.ReadChain(path, "flaring", 1, 11.604525)

		convey.Convey("Then burn-in is dropped and units converted", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(chain.Subset, convey.ShouldEqual, "flaring")
			convey.So(len(chain.T1), convey.ShouldEqual, 2)
			convey.So(chain.T1[0], convey.ShouldAlmostEqual, 0.25*11.604525, 1e-12)
			convey.So(chain.T2[1], convey.ShouldAlmostEqual, 2*11.604525, 1e-12)
			convey.So(chain.Norm1[0], convey.ShouldAlmostEqual, 2, 1e-9)
			convey.So(chain.Norm2[1], convey.ShouldAlmostEqual, 6, 1e-9)
		})

		convey.Convey("Then a burn-in longer than the chain is rejected", func() {
			_, err := catalog.ReadChain(path, "flaring", 3, 11.604525)
			convey.So(errors.Is(err, catalog.ErrNoSamples), convey.ShouldBeTrue)
		})
	})
}
