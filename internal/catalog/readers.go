package catalog

import (
	"fmt"
	"math"

	"github.com/HamletTheHamster/xray-flare-loops/internal/errprop"
	"github.com/HamletTheHamster/xray-flare-loops/internal/ffd"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
)

// ReadFlares reads a flare catalog. Both the pipeline's own column names
// (tstart, ampl_rec, ed_rec, Sector, TIC) and the generic ones
// (peak_amplitude, equivalent_duration, sector_id) are accepted. Rows
// without a TIC column are assigned star.
func ReadFlares(path string, star int64) ([]flare.Event, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	start := column{"tstart", -1}
	stop := column{"tstop", -1}
	ampl := column{"ampl_rec", -1}
	ed := column{"ed_rec", -1}
	sector := column{"Sector", -1}
	var edErrCol, peakCol, ticCol, obsCol, energyCol, energyErrCol = -1, -1, -1, -1, -1, -1

	for col, heading := range header {
		switch heading {
		case "tstart", "start_time":
			start.idx = col
		case "tstop", "stop_time":
			stop.idx = col
		case "ampl_rec", "peak_amplitude", "amplitude":
			ampl.idx = col
		case "ed_rec", "equivalent_duration":
			ed.idx = col
		case "ed_rec_err", "ed_error":
			edErrCol = col
		case "Sector", "sector_id", "sector":
			sector.idx = col
		case "tpeak", "peak_time":
			peakCol = col
		case "TIC", "star_id":
			ticCol = col
		case "tot_obs_time":
			obsCol = col
		case "E_erg", "bolometric_energy":
			energyCol = col
		case "eE_erg", "energy_error":
			energyErrCol = col
		}
	}
	if err := need(path, start, stop, ampl, ed, sector); err != nil {
		return nil, err
	}

	events := make([]flare.Event, 0, len(rows))
	for i, row := range rows {
		ev := flare.Event{StarID: star, Peak: math.NaN(), Energy: math.NaN(), EnergyErr: math.NaN()}
		err := numbers(row,
			[]*float64{&ev.Start, &ev.Stop, &ev.Amplitude, &ev.ED, &ev.EDErr, &ev.TotalObsTime},
			[]int{start.idx, stop.idx, ampl.idx, ed.idx, edErrCol, obsCol})
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		s, err := integer(row, sector.idx)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: sector: %w", path, i+2, err)
		}
		ev.Sector = int(s)

		if peakCol >= 0 {
			if ev.Peak, err = number(row, peakCol); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
			}
		}
		if ticCol >= 0 {
			if ev.StarID, err = integer(row, ticCol); err != nil {
				return nil, fmt.Errorf("%s row %d: TIC: %w", path, i+2, err)
			}
		}
		if energyCol >= 0 {
			if ev.Energy, err = number(row, energyCol); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
			}
		}
		if energyErrCol >= 0 {
			if ev.EnergyErr, err = number(row, energyErrCol); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

// ReadLightCurveCSV reads one sector's light curve from a CSV table with
// time, raw_flux and detrended_flux columns (or the TESS names TIME, FLUX,
// DETRENDED_FLUX). The samples are returned time ordered.
func ReadLightCurveCSV(path string, sector int) (flare.Segment, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return flare.Segment{}, err
	}

	tm := column{"time", -1}
	flux := column{"detrended_flux", -1}
	rawCol := -1
	for col, heading := range header {
		switch heading {
		case "time", "TIME":
			tm.idx = col
		case "raw_flux", "FLUX", "PDCSAP_FLUX":
			rawCol = col
		case "detrended_flux", "DETRENDED_FLUX":
			flux.idx = col
		}
	}
	if err := need(path, tm, flux); err != nil {
		return flare.Segment{}, err
	}

	seg := flare.Segment{Sector: sector}
	for i, row := range rows {
		var s flare.Sample
		if err := numbers(row, []*float64{&s.Time, &s.RawFlux, &s.Flux}, []int{tm.idx, rawCol, flux.idx}); err != nil {
			return flare.Segment{}, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		if finite(s.Time) && finite(s.Flux) {
			seg.Samples = append(seg.Samples, s)
		}
	}
	seg.Sort()
	return seg, nil
}

// StarFFD is one row of the FFD parameter table.
type StarFFD struct {
	StarID int64
	Params ffd.Params
}

// ReadFFD reads the FFD parameter table keyed by TIC.
func ReadFFD(path string) ([]StarFFD, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	tic := column{"TIC", -1}
	alpha := column{"alpha", -1}
	beta := column{"beta", -1}
	var aLo, aUp, bLo, bUp = -1, -1, -1, -1
	for col, heading := range header {
		switch heading {
		case "TIC", "star_id":
			tic.idx = col
		case "alpha":
			alpha.idx = col
		case "beta":
			beta.idx = col
		case "alpha_low_err":
			aLo = col
		case "alpha_up_err":
			aUp = col
		case "beta_low_err":
			bLo = col
		case "beta_up_err":
			bUp = col
		}
	}
	if err := need(path, tic, alpha, beta); err != nil {
		return nil, err
	}

	out := make([]StarFFD, 0, len(rows))
	for i, row := range rows {
		var r StarFFD
		p := &r.Params
		err := numbers(row,
			[]*float64{&p.Alpha, &p.Beta, &p.AlphaLowErr, &p.AlphaUpErr, &p.BetaLowErr, &p.BetaUpErr},
			[]int{alpha.idx, beta.idx, aLo, aUp, bLo, bUp})
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		if r.StarID, err = integer(row, tic.idx); err != nil {
			return nil, fmt.Errorf("%s row %d: TIC: %w", path, i+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// FindFFD returns the last FFD listed for star.
func FindFFD(rows []StarFFD, star int64) (ffd.Params, bool) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].StarID == star {
			return rows[i].Params, true
		}
	}
	return ffd.Params{}, false
}

// Star holds the stellar parameters of one catalog entry.
type Star struct {
	StarID   int64
	SpT      string
	ProtDays float64
	Lbol     float64 // erg/s
	LbolErr  float64
	V, VErr  float64
	Ks, KErr float64
}

// ReadStars reads a stellar-parameter catalog keyed by TIC.
func ReadStars(path string) ([]Star, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	tic := column{"TIC", -1}
	var spt, prot, lbol, elbol, v, ev, ks, eks = -1, -1, -1, -1, -1, -1, -1, -1
	for col, heading := range header {
		switch heading {
		case "TIC", "star_id":
			tic.idx = col
		case "SpT":
			spt = col
		case "Prot_days", "Prot", "Prot_d":
			prot = col
		case "Lbol_erg_s", "Lbol":
			lbol = col
		case "eLbol_erg_s", "eLbol":
			elbol = col
		case "V", "Vmag":
			v = col
		case "eV", "e_Vmag":
			ev = col
		case "Ks", "Kmag", "Ksmag":
			ks = col
		case "eKs", "e_Kmag", "e_Ksmag":
			eks = col
		}
	}
	if err := need(path, tic); err != nil {
		return nil, err
	}

	out := make([]Star, 0, len(rows))
	for i, row := range rows {
		s := Star{SpT: cell(row, spt)}
		err := numbers(row,
			[]*float64{&s.ProtDays, &s.Lbol, &s.LbolErr, &s.V, &s.VErr, &s.Ks, &s.KErr},
			[]int{prot, lbol, elbol, v, ev, ks, eks})
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		if s.StarID, err = integer(row, tic.idx); err != nil {
			return nil, fmt.Errorf("%s row %d: TIC: %w", path, i+2, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// FlareEnergy is one X-ray or UV flare energy estimate.
type FlareEnergy struct {
	Instrument string
	Energy     float64 // erg
	EnergyErr  float64
	RatePerDay float64
}

// ReadEnergies reads the per-instrument flare energy table.
func ReadEnergies(path string) ([]FlareEnergy, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	inst := column{"instrument", -1}
	e := column{"E_erg", -1}
	var ee, rate = -1, -1
	for col, heading := range header {
		switch heading {
		case "instrument":
			inst.idx = col
		case "E_erg":
			e.idx = col
		case "eE_erg":
			ee = col
		case "rate_per_day":
			rate = col
		}
	}
	if err := need(path, inst, e); err != nil {
		return nil, err
	}

	out := make([]FlareEnergy, 0, len(rows))
	for i, row := range rows {
		fe := FlareEnergy{Instrument: cell(row, inst.idx)}
		if err := numbers(row, []*float64{&fe.Energy, &fe.EnergyErr, &fe.RatePerDay}, []int{e.idx, ee, rate}); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		out = append(out, fe)
	}
	return out, nil
}

// FindEnergy returns the first estimate from instrument.
func FindEnergy(rows []FlareEnergy, instrument string) (FlareEnergy, bool) {
	for _, r := range rows {
		if r.Instrument == instrument {
			return r, true
		}
	}
	return FlareEnergy{}, false
}

// MCMCResult summarises the two-temperature posterior of one data subset.
// Temperatures are in MK, norms in 1e-6 XSPEC units, EMs in log10 cm^-3.
type MCMCResult struct {
	Subset string
	T1     errprop.Percentiles
	Norm1  errprop.Percentiles
	T2     errprop.Percentiles
	Norm2  errprop.Percentiles
	EM1    float64
	EM2    float64
}

// ReadMCMC reads the per-subset posterior summary table. The subset column
// may be unnamed, as pandas writes its index.
func ReadMCMC(path string) ([]MCMCResult, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	subset := column{"subset", -1}
	idx := map[string]int{}
	for col, heading := range header {
		switch heading {
		case "subset", "", "Unnamed: 0":
			subset.idx = col
		default:
			idx[heading] = col
		}
	}
	if err := need(path, subset); err != nil {
		return nil, err
	}
	get := func(name string) int {
		if c, ok := idx[name]; ok {
			return c
		}
		return -1
	}
	for _, name := range []string{"T1_50", "T2_50", "norm1_50", "norm2_50"} {
		if err := need(path, column{name, get(name)}); err != nil {
			return nil, err
		}
	}

	out := make([]MCMCResult, 0, len(rows))
	for i, row := range rows {
		r := MCMCResult{Subset: cell(row, subset.idx)}
		var dst []*float64
		var cols []int
		for _, p := range []struct {
			name string
			pc   *errprop.Percentiles
		}{{"T1", &r.T1}, {"norm1", &r.Norm1}, {"T2", &r.T2}, {"norm2", &r.Norm2}} {
			dst = append(dst, &p.pc.P16, &p.pc.P50, &p.pc.P84)
			cols = append(cols, get(p.name+"_16"), get(p.name+"_50"), get(p.name+"_84"))
		}
		dst = append(dst, &r.EM1, &r.EM2)
		cols = append(cols, get("EM1_50"), get("EM2_50"))
		if err := numbers(row, dst, cols); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// FindMCMC returns the summary of subset.
func FindMCMC(rows []MCMCResult, subset string) (MCMCResult, bool) {
	for _, r := range rows {
		if r.Subset == subset {
			return r, true
		}
	}
	return MCMCResult{}, false
}

// XrayFit holds the luminosity and flux of one spectral-fit subset.
type XrayFit struct {
	Subset  string
	Lx      float64 // erg/s
	LxErr   float64
	Flux    float64 // erg/s/cm^2
	FluxErr float64
}

// ReadXrayFits reads the joint spectral-fit summary table.
func ReadXrayFits(path string) ([]XrayFit, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	subset := column{"subset", -1}
	lx := column{"Lx_erg_s", -1}
	var lxErr, flux, fluxErr = -1, -1, -1
	for col, heading := range header {
		switch heading {
		case "subset":
			subset.idx = col
		case "Lx_erg_s":
			lx.idx = col
		case "Lx_erg_s_err":
			lxErr = col
		case "flux_erg_s_cm2":
			flux = col
		case "flux_erg_s_cm2_err":
			fluxErr = col
		}
	}
	if err := need(path, subset, lx); err != nil {
		return nil, err
	}

	out := make([]XrayFit, 0, len(rows))
	for i, row := range rows {
		x := XrayFit{Subset: cell(row, subset.idx)}
		if err := numbers(row, []*float64{&x.Lx, &x.LxErr, &x.Flux, &x.FluxErr}, []int{lx.idx, lxErr, flux, fluxErr}); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		out = append(out, x)
	}
	return out, nil
}

// FindXrayFit returns the fit of subset.
func FindXrayFit(rows []XrayFit, subset string) (XrayFit, bool) {
	for _, r := range rows {
		if r.Subset == subset {
			return r, true
		}
	}
	return XrayFit{}, false
}

// ReadResponse reads a passband table: WAVELENGTH in nm and PASSBAND.
func ReadResponse(path string) (wav, resp []float64, err error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, nil, err
	}

	w := column{"WAVELENGTH", -1}
	p := column{"PASSBAND", -1}
	for col, heading := range header {
		switch heading {
		case "WAVELENGTH", "wavelength":
			w.idx = col
		case "PASSBAND", "passband", "response":
			p.idx = col
		}
	}
	if err := need(path, w, p); err != nil {
		return nil, nil, err
	}

	for i, row := range rows {
		var x, y float64
		if err := numbers(row, []*float64{&x, &y}, []int{w.idx, p.idx}); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		wav = append(wav, x)
		resp = append(resp, y)
	}
	return wav, resp, nil
}

// ReadTimeseries reads the OM count-rate series (time in s, rate in
// counts/s) as a segment whose detrended flux is the raw rate.
func ReadTimeseries(path string) (flare.Segment, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return flare.Segment{}, err
	}

	tm := column{"time", -1}
	rate := column{"rate", -1}
	for col, heading := range header {
		switch heading {
		case "time", "TIME":
			tm.idx = col
		case "rate", "RATE":
			rate.idx = col
		}
	}
	if err := need(path, tm, rate); err != nil {
		return flare.Segment{}, err
	}

	var seg flare.Segment
	for i, row := range rows {
		var s flare.Sample
		if err := numbers(row, []*float64{&s.Time, &s.RawFlux}, []int{tm.idx, rate.idx}); err != nil {
			return flare.Segment{}, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		s.Flux = s.RawFlux
		if finite(s.Time) && finite(s.Flux) {
			seg.Samples = append(seg.Samples, s)
		}
	}
	seg.Sort()
	return seg, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
