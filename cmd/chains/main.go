// Command chains summarises the MCMC chains of the two-temperature X-ray fits:
// posterior percentiles per data subset, the EM-weighted mean temperature and
// the ratio of emission measures.
package main

import (
	"fmt"
	"os"

	"github.com/HamletTheHamster/xray-flare-loops/internal/app"
	"github.com/HamletTheHamster/xray-flare-loops/internal/catalog"
	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
	"github.com/HamletTheHamster/xray-flare-loops/internal/errprop"
	"github.com/HamletTheHamster/xray-flare-loops/internal/logger"
	"github.com/HamletTheHamster/xray-flare-loops/internal/render"
	"github.com/HamletTheHamster/xray-flare-loops/internal/results"
	"github.com/HamletTheHamster/xray-flare-loops/internal/units"
	"gonum.org/v1/plot/vg/draw"
)

var header = []string{
	"",
	"T1_16", "T1_50", "T1_84",
	"norm1_16", "norm1_50", "norm1_84",
	"T2_16", "T2_50", "T2_84",
	"norm2_16", "norm2_50", "norm2_84",
	"weighted_mean_T", "e_weighted_mean_T",
	"norm_ratio", "e_norm_ratio",
	"EM1_50", "EM2_50",
}

// summary is one row of the results table.
type summary struct {
	catalog.MCMCResult
	MeanT, MeanTErr float64
	Ratio, RatioErr float64
}

func main() {
	a, err := app.Start("chains", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	a.Exit(run(a))
}

func run(a *app.App) error {
	cfg := a.Config

	var sums []summary
	for _, c := range cfg.Chains {
		chain, err := catalog.ReadChain(a.Input(c.File), c.Subset, cfg.BurnIn, config.KeVToMK)
		if err != nil {
			return err
		}
		s, err := summarise(chain, cfg.DistancePC)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Subset, err)
		}
		a.Entry.WithFields(logger.Fields{
			"subset":  c.Subset,
			"steps":   len(chain.T1),
			"T1":      s.T1.P50,
			"T2":      s.T2.P50,
			"mean_T":  s.MeanT,
			"emratio": s.Ratio,
		}).Info("chain summarised")
		sums = append(sums, s)
	}
	a.Summary.Counts["chains"] = len(sums)

	rows := make([][]string, len(sums))
	for i, s := range sums {
		rows[i] = append([]string{s.Subset}, results.Floats(
			s.T1.P16, s.T1.P50, s.T1.P84,
			s.Norm1.P16, s.Norm1.P50, s.Norm1.P84,
			s.T2.P16, s.T2.P50, s.T2.P84,
			s.Norm2.P16, s.Norm2.P50, s.Norm2.P84,
			s.MeanT, s.MeanTErr,
			s.Ratio, s.RatioErr,
			s.EM1, s.EM2,
		)...)
	}
	// Written next to the chains: loops and values read it back as input.
	path := cfg.DataPath(cfg.MCMCTable)
	if err := results.WriteCSV(path, header, rows); err != nil {
		return err
	}
	a.Summary.Output(path)

	return figures(a, sums)
}

func summarise(c catalog.Chain, distancePC float64) (summary, error) {
	var s summary
	s.Subset = c.Subset
	for _, p := range []struct {
		x  []float64
		pc *errprop.Percentiles
	}{{c.T1, &s.T1}, {c.Norm1, &s.Norm1}, {c.T2, &s.T2}, {c.Norm2, &s.Norm2}} {
		pc, err := errprop.FromSamples(p.x)
		if err != nil {
			return s, err
		}
		*p.pc = pc
	}

	var err error
	if s.MeanT, s.MeanTErr, err = errprop.WeightedMeanPercentiles(s.T1, s.Norm1, s.T2, s.Norm2); err != nil {
		return s, err
	}
	if s.Ratio, err = errprop.Ratio(s.Norm2.P50, s.Norm1.P50); err != nil {
		return s, err
	}
	if s.RatioErr, err = errprop.RatioError(s.Norm1.P50, s.Norm1.Sigma(), s.Norm2.P50, s.Norm2.Sigma()); err != nil {
		return s, err
	}

	// Norms are held in units of 1e-6.
	s.EM1 = units.NormToEMAt(s.Norm1.P50*1e-6, distancePC)
	s.EM2 = units.NormToEMAt(s.Norm2.P50*1e-6, distancePC)
	return s, nil
}

var shapes = []draw.GlyphDrawer{draw.CrossGlyph{}, draw.RingGlyph{}, draw.SquareGlyph{}}

func figures(a *app.App, sums []summary) error {
	var temps, ratios []render.Marker
	for i, s := range sums {
		shape := shapes[i%len(shapes)]
		temps = append(temps, render.Marker{
			Label: s.Subset,
			X:     s.T1.P50, XLow: s.T1.Minus(), XHigh: s.T1.Plus(),
			Y: s.T2.P50, YLow: s.T2.Minus(), YHigh: s.T2.Plus(),
			Shape: shape,
			Color: i,
		})
		ratios = append(ratios, render.Marker{
			Label: s.Subset,
			X:     s.MeanT, XLow: s.MeanTErr, XHigh: s.MeanTErr,
			Y: s.Ratio, YLow: s.RatioErr, YHigh: s.RatioErr,
			Shape: shape,
			Color: i,
		})
	}

	p, err := render.Scatter(render.Axes{XLabel: "T1 [MK]", YLabel: "T2 [MK]"}, temps)
	if err != nil {
		return err
	}
	if err := a.SaveFigure(p, "T1_vs_T2"); err != nil {
		return err
	}

	p, err = render.Scatter(render.Axes{
		XLabel: "EM-weighted mean coronal temperature T [MK]",
		YLabel: "emission measure ratio EM hot / EM cool",
		YRange: [2]float64{0, 5.5},
	}, ratios)
	if err != nil {
		return err
	}
	return a.SaveFigure(p, "EM_weighted_T_vs_norm_ratio")
}
