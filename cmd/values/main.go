// Command values writes the LaTeX value fragments and the TESS flare table
// quoted in the paper. Each section is independent; a failing section is
// reported and the others are still written.
package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/HamletTheHamster/xray-flare-loops/internal/app"
	"github.com/HamletTheHamster/xray-flare-loops/internal/catalog"
	"github.com/HamletTheHamster/xray-flare-loops/internal/errprop"
	"github.com/HamletTheHamster/xray-flare-loops/internal/latex"
	"github.com/HamletTheHamster/xray-flare-loops/internal/units"
)

// Data subsets as named in the spectral-fit tables.
const (
	quietFit = "noflare"
	fullSet  = "full data set"
	quiet    = "quiescent"
	flaring  = "flaring"
)

func main() {
	a, err := app.Start("values", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	a.Exit(run(a))
}

func run(a *app.App) error {
	sections := []struct {
		name string
		run  func(*app.App) error
	}{
		{"ffd", ffdValues},
		{"xray", xrayValues},
		{"temperatures", temperatures},
		{"energies", energies},
		{"rossby", rossby},
		{"flare table", flareTable},
	}

	var errs []error
	for _, s := range sections {
		if err := s.run(a); err != nil {
			a.Entry.WithError(err).WithField("section", s.name).Error("values not written")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		a.Summary.Counts["sections"]++
	}
	return errors.Join(errs...)
}

func ffdValues(a *app.App) error {
	cfg := a.Config
	rows, err := catalog.ReadFFD(a.Input(cfg.FFDTable))
	if err != nil {
		return err
	}
	p, ok := catalog.FindFFD(rows, cfg.StarID)
	if !ok {
		return fmt.Errorf("%w: TIC %d", catalog.ErrNoSamples, cfg.StarID)
	}
	if cfg.EnergyFactor != 0 {
		if p, err = p.ToEnergy(cfg.EnergyFactor); err != nil {
			return err
		}
	}

	beta, err := latex.Beta(p)
	if err != nil {
		return err
	}
	r, err := p.LogRateAbove(cfg.LogThresholdEnergy)
	if err != nil {
		return err
	}
	a.Summary.Values["r315"] = r

	return write(a,
		"tess_ffd_alpha.tex", latex.Alpha(p),
		"tess_ffd_beta.tex", beta,
		"R315.tex", latex.LogRate(r),
	)
}

func xrayValues(a *app.App) error {
	cfg := a.Config
	fits, err := catalog.ReadXrayFits(a.Input(cfg.XrayFitTable))
	if err != nil {
		return err
	}
	x, ok := catalog.FindXrayFit(fits, quietFit)
	if !ok {
		return fmt.Errorf("%w: subset %q", catalog.ErrNoSamples, quietFit)
	}

	star, err := target(a)
	if err != nil {
		return err
	}
	ratio, err := errprop.Ratio(x.Lx, star.Lbol)
	if err != nil {
		return err
	}
	ratioErr, err := errprop.RatioError(star.Lbol, star.LbolErr, x.Lx, x.LxErr)
	if err != nil {
		return err
	}
	a.Summary.Values["lx_lbol"] = ratio
	a.Metrics.Value("lx_lbol", ratio)

	return write(a,
		"epic_Lx.tex", latex.Luminosity(x.Lx, x.LxErr, 26, 2),
		"epic_flux.tex", latex.Flux(x.Flux, x.FluxErr),
		"Lbol.tex", latex.Luminosity(star.Lbol, star.LbolErr, 30, 1),
		"lxlbol.tex", latex.Ratio(ratio, ratioErr),
	)
}

func temperatures(a *app.App) error {
	rows, err := catalog.ReadMCMC(a.Input(a.Config.MCMCTable))
	if err != nil {
		return err
	}
	find := func(subset string) (catalog.MCMCResult, error) {
		r, ok := catalog.FindMCMC(rows, subset)
		if !ok {
			return r, fmt.Errorf("%w: subset %q", catalog.ErrNoSamples, subset)
		}
		return r, nil
	}
	mean := func(subset string) (float64, error) {
		r, err := find(subset)
		if err != nil {
			return 0, err
		}
		return errprop.WeightedMean(r.T1.P50, r.Norm1.P50, r.T2.P50, r.Norm2.P50)
	}

	full, err := find(fullSet)
	if err != nil {
		return err
	}
	tq, err := mean(quiet)
	if err != nil {
		return err
	}
	tf, err := mean(flaring)
	if err != nil {
		return err
	}
	a.Summary.Values["T_quiescent_MK"] = tq
	a.Summary.Values["T_flaring_MK"] = tf

	return write(a,
		"T1.tex", latex.Temperature(full.T1),
		"T2.tex", latex.Temperature(full.T2),
		"Tqmean.tex", latex.MeanTemperature(tq),
		"Tfmean.tex", latex.MeanTemperature(tf),
	)
}

func energies(a *app.App) error {
	rows, err := catalog.ReadEnergies(a.Input(a.Config.EnergyTable))
	if err != nil {
		return err
	}
	epic, ok := catalog.FindEnergy(rows, "EPIC")
	if !ok {
		return fmt.Errorf("%w: no EPIC flare energy", catalog.ErrNoSamples)
	}
	om, ok := catalog.FindEnergy(rows, "OM")
	if !ok {
		return fmt.Errorf("%w: no OM flare energy", catalog.ErrNoSamples)
	}
	return write(a,
		"epic_flare.tex", latex.Energy(epic.Energy, epic.EnergyErr),
		"om_flare.tex", latex.Energy(om.Energy, om.EnergyErr),
	)
}

func rossby(a *app.App) error {
	star, err := target(a)
	if err != nil {
		return err
	}
	if math.IsNaN(star.V) || math.IsNaN(star.Ks) {
		return fmt.Errorf("%w: TIC %d has no V or Ks", catalog.ErrMissingColumn, star.StarID)
	}
	tau := units.ConvectiveTurnoverTime(star.V, star.Ks)
	high, low := units.ConvectiveTurnoverBounds(star.V, star.Ks, star.VErr, star.KErr)
	ro, err := units.RossbyNumber(star.ProtDays, tau)
	if err != nil {
		return err
	}
	a.Summary.Values["rossby"] = ro

	return write(a,
		"tau_conv.tex", "$"+latex.UpLow(tau, tau-low, high-tau, 1)+`\,$d`,
		"rossby.tex", fmt.Sprintf("$%.4f$", ro),
	)
}

// flareTable lists every catalog flare in time order.
func flareTable(a *app.App) error {
	events, err := catalog.ReadFlares(a.Input(a.Config.FlareTable), a.Config.StarID)
	if err != nil {
		return err
	}
	t := latex.Table{
		Columns: []string{`$t_{s}$ [BJD - 2457000]`, `$a$`, `$E_{\rm bol}$ [$10^{31}$ erg]`, "Sector"},
	}
	for _, ev := range catalog.SortByTime(events) {
		err := t.AddRow(
			fmt.Sprintf("%.5f", ev.Start),
			fmt.Sprintf("%.3f", ev.Amplitude),
			fmt.Sprintf("%.1f [%.1f]", ev.ED/1e31, ev.EDErr/1e31),
			fmt.Sprintf("%d", ev.Sector),
		)
		if err != nil {
			return err
		}
	}
	a.Summary.Counts["table_flares"] = len(t.Rows)
	return write(a, "tess_flares.tex", t.String())
}

// target returns the stellar parameters of the configured star.
func target(a *app.App) (catalog.Star, error) {
	stars, err := catalog.ReadStars(a.Input(a.Config.StellarTable))
	if err != nil {
		return catalog.Star{}, err
	}
	for _, s := range stars {
		if s.StarID == a.Config.StarID {
			return s, nil
		}
	}
	return catalog.Star{}, fmt.Errorf("%w: TIC %d not in %s", catalog.ErrNoSamples, a.Config.StarID, a.Config.StellarTable)
}

// write takes name, body pairs.
func write(a *app.App, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := a.WriteFragment(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
