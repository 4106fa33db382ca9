// Command decayfit fits exponential decays to the TESS flares of one star and
// places their e-folding times on the reconnection B/L grid.
package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/HamletTheHamster/xray-flare-loops/internal/app"
	"github.com/HamletTheHamster/xray-flare-loops/internal/catalog"
	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
	"github.com/HamletTheHamster/xray-flare-loops/internal/decay"
	"github.com/HamletTheHamster/xray-flare-loops/internal/ffd"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"github.com/HamletTheHamster/xray-flare-loops/internal/logger"
	"github.com/HamletTheHamster/xray-flare-loops/internal/render"
	"github.com/HamletTheHamster/xray-flare-loops/internal/results"
	"github.com/HamletTheHamster/xray-flare-loops/internal/units"
	"gonum.org/v1/plot/vg/draw"
)

func main() {
	a, err := app.Start("decayfit", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	a.Exit(run(a))
}

func run(a *app.App) error {
	cfg := a.Config

	events, err := catalog.ReadFlares(a.Input(cfg.FlareTable), cfg.StarID)
	if err != nil {
		return err
	}
	events = catalog.ForStar(events, cfg.StarID)
	if cfg.DropLargest {
		var largest flare.Event
		var ok bool
		if events, largest, ok = catalog.DropLargest(events); ok {
			a.Entry.WithFields(logger.Fields{"flare": largest.Name(), "ed": largest.ED}).Info("largest flare left out")
		}
	}
	events = catalog.SortByTime(events)
	a.Summary.Counts["flares"] = len(events)

	segments, err := lightCurves(a, events)
	if err != nil {
		return err
	}

	windows, dropped := catalog.Join(events, segments, cfg.WindowPadDays)
	for _, ev := range dropped {
		a.Entry.WithFields(logger.Fields{"flare": ev.Name()}).Info("no light curve for sector")
	}
	a.Metrics.Dropped("no_light_curve", len(dropped))
	a.Summary.Counts["dropped"] = len(dropped)

	fitter := decay.NewFitter(
		decay.WithPad(cfg.WindowPadDays),
		decay.WithIterations(cfg.Iterations),
	)

	// Every bad window is reported before any fit runs.
	var invalid int
	for _, w := range windows {
		if err := fitter.Check(w.Segment, w.Event); err != nil {
			a.Entry.WithError(err).WithFields(logger.Fields{"flare": w.Event.Name()}).Error("invalid fit window")
			invalid++
		}
	}
	if invalid > 0 {
		a.Summary.Counts["invalid"] = invalid
		return fmt.Errorf("%w: %d of %d flares", decay.ErrInvalidWindow, invalid, len(windows))
	}

	recs, err := fitAll(a, fitter, windows)
	if err != nil {
		return err
	}

	efold := a.Config.OutputPath("efold.csv")
	if err := results.WriteDecayCSV(efold, recs); err != nil {
		return err
	}
	a.Summary.Output(efold)
	pq := a.Config.OutputPath("efold.parquet")
	if err := results.WriteDecayParquet(pq, recs, cfg.ParquetCompression); err != nil {
		return err
	}
	a.Summary.Output(pq)

	return figures(a, recs)
}

func lightCurves(a *app.App, events []flare.Event) ([]flare.Segment, error) {
	var segments []flare.Segment
	for _, sector := range a.Config.Sectors {
		path := a.Config.LightCurvePath(sector)
		seg, err := catalog.ReadLightCurve(path, sector)
		if errors.Is(err, os.ErrNotExist) {
			a.Entry.WithFields(logger.Fields{"sector": sector}).Warn("light curve missing")
			continue
		}
		if err != nil {
			return nil, err
		}
		a.Summary.Input(path)
		seg, med, err := catalog.Normalize(seg, events, a.Config.WindowPadDays)
		if err != nil {
			return nil, err
		}
		a.Entry.WithFields(logger.Fields{
			"sector":  sector,
			"samples": seg.Len(),
			"median":  med,
		}).Debug("light curve normalised")
		segments = append(segments, seg)
	}
	return segments, nil
}

func fitAll(a *app.App, fitter *decay.Fitter, windows []flare.Window) ([]results.DecayRecord, error) {
	began := time.Now()
	outcomes := fitter.FitBatch(windows)
	var each time.Duration
	if len(outcomes) > 0 {
		each = time.Since(began) / time.Duration(len(outcomes))
	}

	var recs []results.DecayRecord
	var frames []string
	for i, out := range outcomes {
		w := out.Window
		rec := results.FromOutcome(out, config.MinutesPerDay)
		a.Metrics.Fit(rec.Status, each)

		entry := a.Entry.WithFields(logger.Fields{"flare": w.Event.Name(), "status": rec.Status})
		if out.Err != nil {
			entry.WithError(out.Err).Warn("decay fit skipped")
			a.Summary.Counts[rec.Status]++
			recs = append(recs, rec)
			continue
		}
		entry.WithFields(logger.Fields{"efold_min": rec.EFoldMin, "at_bound": rec.AtBound}).Info("decay fitted")
		a.Metrics.EFold(rec.EFoldMin)
		a.Summary.Counts[rec.Status]++

		p, err := render.DecayFit(w, out.Fit, "Time [BJD - 2457000]")
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("expfit_flare_%d_%d", w.Event.Sector, i)
		if err := a.SaveFigure(p, name); err != nil {
			return nil, err
		}
		frames = append(frames, filepath.Join(a.RunDir, name+".png"))
		recs = append(recs, rec)
	}

	if len(frames) > 0 {
		path := filepath.Join(a.RunDir, "expfit_flares.gif")
		if err := render.Animate(frames, path, 100); err != nil {
			return nil, err
		}
		a.Summary.Output(path)
	}

	// Energies are filled after fitting so failed fits keep theirs too.
	energies := catalog.ApplyEnergyFactor(eventsOf(windows), a.Config.EnergyFactor)
	for i := range recs {
		recs[i].Energy, recs[i].EnergyErr = energies[i].Energy, energies[i].EnergyErr
	}
	return recs, nil
}

func eventsOf(windows []flare.Window) []flare.Event {
	out := make([]flare.Event, len(windows))
	for i, w := range windows {
		out[i] = w.Event
	}
	return out
}

func figures(a *app.App, recs []results.DecayRecord) error {
	var energy, efold []float64
	bySector := map[int][]float64{}
	for _, r := range recs {
		if r.Status != results.StatusOK {
			continue
		}
		bySector[int(r.Sector)] = append(bySector[int(r.Sector)], r.EFoldMin)
		if r.Energy > 0 {
			energy = append(energy, r.Energy)
			efold = append(efold, r.EFoldMin)
		}
	}

	grid := ffd.LogGrid(math.Pow(10, 29.3), 1e35, 100)
	n, ma := config.DefaultCoronalDensity, config.DefaultAlfvenMach
	var field, loop []render.Curve
	for _, B := range a.Config.FieldGrid {
		c := render.Curve{Label: fmt.Sprintf("%g G", B), X: grid, Y: make([]float64, len(grid))}
		for i, e := range grid {
			c.Y[i] = units.DecayTimeFromField(e, B, n, ma) / 60
		}
		field = append(field, c)
	}
	for _, L := range a.Config.LoopGrid {
		c := render.Curve{Label: fmt.Sprintf("%.0e cm", L), X: grid, Y: make([]float64, len(grid))}
		for i, e := range grid {
			c.Y[i] = units.DecayTimeFromLoop(e, L, n, ma) / 60
		}
		loop = append(loop, c)
	}

	var markers []render.Marker
	if rows, err := catalog.ReadEnergies(a.Input(a.Config.EnergyTable)); err != nil {
		a.Entry.WithError(err).Warn("no X-ray/UV flare energies, OM marker left out")
	} else if om, ok := catalog.FindEnergy(rows, "OM"); ok {
		markers = append(markers, render.Marker{
			Label: "OM flare",
			X:     om.Energy,
			Y:     a.Config.OMEFoldSeconds / 60,
			XLow:  om.EnergyErr,
			XHigh: om.EnergyErr,
			Shape: draw.PyramidGlyph{},
			Color: 3,
		})
	}

	p, err := render.BLRelation(field, loop, energy, efold, markers...)
	if err != nil {
		return err
	}
	if err := a.SaveFigure(p, "flare_BL_relation"); err != nil {
		return err
	}

	if len(efold) == 0 {
		a.Entry.Warn("no converged fits, histogram left out")
		return nil
	}
	h, err := render.EFoldHistogram(efold, 10)
	if err != nil {
		return err
	}
	if err := a.SaveFigure(h, "efold_histogram"); err != nil {
		return err
	}
	box, err := render.EFoldBySector(a.Config.Sectors, bySector)
	if err != nil {
		return err
	}
	if err := a.SaveFigure(box, "efold_by_sector"); err != nil {
		return err
	}

	med, err := catalog.Median(efold)
	if err != nil {
		return err
	}
	a.Summary.Values["efold_median_min"] = med
	a.Metrics.Value("efold_median_min", med)

	logE := make([]float64, len(energy))
	for i, e := range energy {
		logE[i] = math.Log10(e)
	}
	a.PreviewPlot("efold_vs_energy", "e-folding time", "log10 E [erg]", "e-folding time [min]",
		render.Series{Name: "TESS flares", X: logE, Y: efold})
	return nil
}
