// Command loops derives flare loop sizes and field strengths from the hot
// component of the two-temperature X-ray fits.
package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/HamletTheHamster/xray-flare-loops/internal/app"
	"github.com/HamletTheHamster/xray-flare-loops/internal/catalog"
	"github.com/HamletTheHamster/xray-flare-loops/internal/latex"
	"github.com/HamletTheHamster/xray-flare-loops/internal/logger"
	"github.com/HamletTheHamster/xray-flare-loops/internal/results"
	"github.com/HamletTheHamster/xray-flare-loops/internal/units"
)

const (
	flaring = "flaring"

	// riseTime is the EPIC flare rise time, start to peak, in s.
	riseTime = 1e3
)

func main() {
	a, err := app.Start("loops", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	a.Exit(run(a))
}

// loop is the size (stellar radii) and field (G) of one subset at one density.
type loop struct {
	subset string
	n0     float64
	size   float64
	field  float64
}

func run(a *app.App) error {
	cfg := a.Config

	rows, err := catalog.ReadMCMC(a.Input(cfg.MCMCTable))
	if err != nil {
		return err
	}
	radius := units.RadiusToCM(cfg.RadiusRsun)

	var loops []loop
	var table [][]string
	for _, r := range rows {
		if math.IsNaN(r.EM2) {
			a.Entry.WithFields(logger.Fields{"subset": r.Subset}).Warn("no hot emission measure, run chains first")
			continue
		}
		em, T := math.Pow(10, r.EM2), r.T2.P50*1e6
		for _, n0 := range cfg.Densities {
			l := loop{
				subset: r.Subset,
				n0:     n0,
				size:   units.FlareLoopSize(em, n0, T) / radius,
				field:  units.FlareMagneticField(em, n0, T),
			}
			loops = append(loops, l)
			table = append(table, append([]string{l.subset}, results.Floats(n0, l.size, l.field)...))
		}
	}
	if err := a.WriteTable("loops.csv", []string{"subset", "n0", "L_rstar", "B_G"}, table); err != nil {
		return err
	}
	a.Summary.Counts["loops"] = len(loops)

	hot, ok := catalog.FindMCMC(rows, flaring)
	if !ok {
		return fmt.Errorf("%w: no %q subset in %s", catalog.ErrMissingColumn, flaring, cfg.MCMCTable)
	}
	if err := flareTable(a, loops); err != nil {
		return err
	}

	// Loop size from the rise time, for two heating shapes.
	Ta := units.ApexTemperature(hot.T2.P50 * 1e6)
	for _, psi := range cfg.Psi {
		size := units.FlareLoopSizeFromDuration(riseTime, Ta, psi) * 100 / radius
		name := fmt.Sprintf("loop_rise_psi%.0f.tex", psi*10)
		if err := a.WriteFragment(name, latex.Loop(size)); err != nil {
			return err
		}
		a.Summary.Values[fmt.Sprintf("loop_rise_psi_%.1f", psi)] = size
	}
	return nil
}

// flareTable writes B and L of the flaring subset against n0.
func flareTable(a *app.App, loops []loop) error {
	t := latex.Table{Align: "l", Columns: []string{`$n_0$ [cm$^{-3}$]`}}
	var field, size []string
	field = append(field, `$B$ [G]`)
	size = append(size, `$L$ [R$_*$]`)
	for _, l := range loops {
		if l.subset != flaring {
			continue
		}
		t.Align += "r"
		t.Columns = append(t.Columns, fmt.Sprintf(`$10^{%d}$`, int(math.Round(math.Log10(l.n0)))))
		field = append(field, strconv.Itoa(int(math.Round(l.field))))
		size = append(size, fmt.Sprintf("%.2f", l.size))
		a.Metrics.Value(fmt.Sprintf("loop_B_%.0e", l.n0), l.field)
	}
	if err := t.AddRow(field...); err != nil {
		return err
	}
	if err := t.AddRow(size...); err != nil {
		return err
	}

	path, err := latex.WriteFragment(a.Config.OutputDir, "EPIC_flare_loop_table.tex", t.String())
	if err != nil {
		return err
	}
	a.Summary.Output(path)
	return nil
}
