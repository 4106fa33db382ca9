// Command omdecay fits the e-folding time of the flare in the XMM-Newton OM
// light curve. The time axis is in mission seconds.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/HamletTheHamster/xray-flare-loops/internal/app"
	"github.com/HamletTheHamster/xray-flare-loops/internal/catalog"
	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
	"github.com/HamletTheHamster/xray-flare-loops/internal/decay"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"github.com/HamletTheHamster/xray-flare-loops/internal/latex"
	"github.com/HamletTheHamster/xray-flare-loops/internal/logger"
	"github.com/HamletTheHamster/xray-flare-loops/internal/render"
	"github.com/HamletTheHamster/xray-flare-loops/internal/results"
)

// halfWidth sets the initial e-folding guess of the OM flare, in seconds.
const halfWidth = 20.

func main() {
	a, err := app.Start("omdecay", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	a.Exit(run(a))
}

func run(a *app.App) error {
	cfg := a.Config

	series, err := catalog.ReadTimeseries(a.Input(cfg.OMTimeseries))
	if err != nil {
		return err
	}

	// The whole series is quiescent enough to set the median.
	norm, med, err := catalog.Normalize(series, nil, 0)
	if err != nil {
		return err
	}
	seg := norm.Between(cfg.OMStart, cfg.OMStop)
	if seg.Len() == 0 {
		return fmt.Errorf("%w: no OM samples in [%v, %v]", catalog.ErrNoSamples, cfg.OMStart, cfg.OMStop)
	}

	ev := omEvent(seg)
	a.Entry.WithFields(logger.Fields{
		"median":    med,
		"samples":   seg.Len(),
		"peak":      ev.Peak,
		"amplitude": ev.Amplitude,
	}).Info("OM flare located")

	fitter := decay.NewFitter(
		decay.WithBounds(decay.OMBounds),
		decay.WithMaxHalfWidth(config.SecondsPerDay),
		decay.WithPad(0),
		decay.WithIterations(cfg.Iterations),
	)
	began := time.Now()
	fit, err := fitter.Fit(seg, ev)
	rec := results.FromOutcome(decay.Outcome{Window: flare.Window{Event: ev, Segment: seg}, Fit: fit, Err: err}, 1./60)
	a.Metrics.Fit(rec.Status, time.Since(began))
	if err != nil {
		return err
	}

	a.Entry.WithFields(logger.Fields{
		"efold_s":     rec.EFold,
		"efold_err_s": rec.EFoldErr,
		"at_bound":    rec.AtBound,
	}).Info("OM decay fitted")
	a.Metrics.EFold(rec.EFoldMin)
	a.Metrics.Value("om_efold_s", rec.EFold)
	a.Summary.Values["om_efold_s"] = rec.EFold

	if err := a.WriteFragment("om_efold.tex", "$"+latex.PlusMinus(rec.EFold, rec.EFoldErr, 0)+`\,$s`); err != nil {
		return err
	}
	if err := results.WriteDecayCSV(cfg.OutputPath("om_efold.csv"), []results.DecayRecord{rec}); err != nil {
		return err
	}
	a.Summary.Output(cfg.OutputPath("om_efold.csv"))

	p, err := render.DecayFit(flare.Window{Event: ev, Segment: seg}, fit, "Time [s]")
	if err != nil {
		return err
	}
	if err := a.SaveFigure(p, "OM_exponential_decay"); err != nil {
		return err
	}

	a.PreviewPlot("OM_exponential_decay", "OM flare", "Time [s]", "Normalized rate",
		render.Series{Name: "OM", X: seg.Times(), Y: seg.Fluxes()},
		render.Series{Name: "fit", Style: "lines", X: seg.Times(), Y: fit.Eval(seg.Times())})
	return nil
}

// omEvent places the flare at the brightest sample of seg.
func omEvent(seg flare.Segment) flare.Event {
	best := seg.Samples[0]
	for _, smp := range seg.Samples[1:] {
		if smp.Flux > best.Flux {
			best = smp
		}
	}
	return flare.Event{
		Start:     best.Time - halfWidth,
		Stop:      best.Time + halfWidth,
		Peak:      best.Time,
		Amplitude: best.Flux - 1,
	}
}
