// Command ffd draws the flare frequency distribution of the target star with
// its power law, and compares the flaring rate above 10^31.5 erg across the
// stars of the FFD table.
package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/HamletTheHamster/xray-flare-loops/internal/app"
	"github.com/HamletTheHamster/xray-flare-loops/internal/catalog"
	"github.com/HamletTheHamster/xray-flare-loops/internal/ffd"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"github.com/HamletTheHamster/xray-flare-loops/internal/logger"
	"github.com/HamletTheHamster/xray-flare-loops/internal/render"
	"github.com/HamletTheHamster/xray-flare-loops/internal/results"
	"github.com/HamletTheHamster/xray-flare-loops/internal/units"
	"gonum.org/v1/plot/vg/draw"
)

func main() {
	a, err := app.Start("ffd", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	a.Exit(run(a))
}

func run(a *app.App) error {
	cfg := a.Config

	table, err := catalog.ReadFFD(a.Input(cfg.FFDTable))
	if err != nil {
		return err
	}
	params, ok := catalog.FindFFD(table, cfg.StarID)
	if !ok {
		return fmt.Errorf("%w: TIC %d not in %s", catalog.ErrMissingColumn, cfg.StarID, cfg.FFDTable)
	}

	factor, err := energyFactor(a)
	if err != nil {
		return err
	}
	if factor != 0 {
		if params, err = params.ToEnergy(factor); err != nil {
			return err
		}
	}
	a.Summary.Values["alpha"] = params.Alpha
	a.Summary.Values["energy_beta"] = params.Beta
	a.Metrics.Value("energy_beta", params.Beta)

	events, err := catalog.ReadFlares(a.Input(cfg.FlareTable), cfg.StarID)
	if err != nil {
		return err
	}
	events = catalog.SortByEnergy(catalog.ApplyEnergyFactor(catalog.ForStar(events, cfg.StarID), factor))
	if len(events) == 0 {
		return fmt.Errorf("%w: no flares of TIC %d", catalog.ErrNoSamples, cfg.StarID)
	}
	a.Summary.Counts["flares"] = len(events)

	if err := distribution(a, params, events); err != nil {
		return err
	}
	return r315(a, table, params)
}

// energyFactor returns the erg per second of equivalent duration, zero when
// the catalog already holds energies.
func energyFactor(a *app.App) (float64, error) {
	cfg := a.Config
	if !cfg.UseResponse {
		return cfg.EnergyFactor, nil
	}
	wav, resp, err := catalog.ReadResponse(a.Input(cfg.ResponseTable))
	if err != nil {
		return 0, err
	}
	factor, err := units.FlareFactor(cfg.TeffK, cfg.RadiusRsun, wav, resp, cfg.FlareTemperatureK)
	if err != nil {
		return 0, err
	}
	a.Entry.WithFields(logger.Fields{"factor_erg_s": factor}).Info("flare energy factor from passband")
	a.Summary.Values["flare_factor"] = factor
	return factor, nil
}

func distribution(a *app.App, params ffd.Params, events []flare.Event) error {
	energies := catalog.Energies(events)
	totObs := events[0].TotalObsTime

	points, err := ffd.EDAndFreq(energies, totObs)
	if err != nil {
		return err
	}

	// A fresh fit only cross-checks the tabulated parameters.
	if refit, err := ffd.FitPowerLaw(energies, totObs); err != nil {
		a.Entry.WithError(err).Warn("power-law refit failed")
		a.Metrics.Fit(results.StatusNoConvergence, 0)
	} else {
		a.Entry.WithFields(logger.Fields{
			"alpha":       params.Alpha,
			"alpha_refit": refit.Alpha,
			"beta":        params.Beta,
			"beta_refit":  refit.Beta,
		}).Info("power law compared")
		a.Metrics.Fit(results.StatusOK, 0)
		a.Summary.Values["alpha_refit"] = refit.Alpha
	}

	lo, hi := energies[0], 2*energies[len(energies)-1]
	var markers []render.Marker
	if rows, err := catalog.ReadEnergies(a.Input(a.Config.EnergyTable)); err != nil {
		a.Entry.WithError(err).Warn("no X-ray/UV flare energies, OM marker left out")
	} else if om, ok := catalog.FindEnergy(rows, "OM"); ok {
		lo = om.Energy / 10
		markers = append(markers, render.Marker{
			Label: "OM",
			X:     om.Energy,
			Y:     om.RatePerDay,
			XLow:  om.EnergyErr,
			XHigh: om.EnergyErr,
			YLow:  0.5 * om.RatePerDay,
			YHigh: om.RatePerDay,
			Shape: draw.SquareGlyph{},
			Color: 3,
		})
	}

	curve, err := params.Envelope(ffd.LogGrid(lo, hi, 10))
	if err != nil {
		return err
	}
	label := fmt.Sprintf("α = %.1f (+%.1f / -%.1f)", params.Alpha, params.AlphaUpErr, params.AlphaLowErr)
	p, err := render.FFD(points, curve, label, markers...)
	if err != nil {
		return err
	}
	if err := a.SaveFigure(p, fmt.Sprintf("%d_tess_ffd", a.Config.StarID)); err != nil {
		return err
	}

	e := make([]float64, len(points))
	f := make([]float64, len(points))
	for i, pt := range points {
		e[i], f[i] = math.Log10(pt.Energy), math.Log10(pt.Freq)
	}
	a.PreviewPlot("tess_ffd", "FFD", "log10 E [erg]", "log10 flares per day",
		render.Series{Name: "TESS", X: e, Y: f})
	return nil
}

// r315 writes the log10 rate above 10^31.5 erg of every star with a rotation
// period, together with its Rossby number where colours are known.
func r315(a *app.App, table []catalog.StarFFD, target ffd.Params) error {
	cfg := a.Config

	stars, err := catalog.ReadStars(a.Input(cfg.StellarTable))
	if err != nil {
		return err
	}
	joined, dropped := catalog.JoinFFD(table, stars)
	for _, d := range dropped {
		a.Entry.WithFields(logger.Fields{"tic": d.StarID}).Info("no stellar parameters")
	}
	a.Metrics.Dropped("no_stellar_parameters", len(dropped))

	var rows [][]string
	var markers []render.Marker
	for i, r := range joined {
		params := r.Params
		if r.StarFFD.StarID == cfg.StarID {
			params = target
		}
		rate, err := params.LogRateAbove(cfg.LogThresholdEnergy)
		if err != nil {
			a.Entry.WithError(err).WithFields(logger.Fields{"tic": r.StarFFD.StarID}).Warn("no R31.5")
			continue
		}

		tau, ro := math.NaN(), math.NaN()
		if !math.IsNaN(r.Star.V) && !math.IsNaN(r.Star.Ks) {
			tau = units.ConvectiveTurnoverTime(r.Star.V, r.Star.Ks)
			if ro, err = units.RossbyNumber(r.Star.ProtDays, tau); err != nil {
				return err
			}
		}

		rows = append(rows, append([]string{strconv.FormatInt(r.StarFFD.StarID, 10), r.Star.SpT},
			results.Floats(r.Star.ProtDays, rate, tau, ro)...))
		if r.StarFFD.StarID == cfg.StarID {
			a.Summary.Values["r315"] = rate
			a.Metrics.Value("r315", rate)
		}
		if !(r.Star.ProtDays > 0) {
			continue
		}
		markers = append(markers, render.Marker{
			Label: r.Star.SpT,
			X:     r.Star.ProtDays,
			Y:     rate,
			Shape: draw.SquareGlyph{},
			Color: i,
		})
	}

	if err := a.WriteTable("r315.csv", []string{"TIC", "SpT", "Prot_days", "r315", "tau_conv_d", "Rossby"}, rows); err != nil {
		return err
	}
	if len(markers) == 0 {
		return nil
	}
	p, err := render.Scatter(render.Axes{
		XLabel: "rotation period [d]",
		YLabel: "log10 flares per day above log10 E = 31.5 erg",
		LogX:   true,
	}, markers)
	if err != nil {
		return err
	}
	return a.SaveFigure(p, "r315_prot")
}
