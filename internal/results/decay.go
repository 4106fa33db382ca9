// Package results writes the derived tables of a run: per-flare decay fits
// as CSV and Parquet, generic CSV tables and the YAML run summary.
package results

import (
	"errors"
	"math"

	"github.com/HamletTheHamster/xray-flare-loops/internal/decay"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
)

// Fit status values.
const (
	StatusOK            = "ok"
	StatusNoConvergence = "no_convergence"
	StatusInvalid       = "invalid_window"
	StatusFailed        = "failed"
)

// DecayRecord is one row of the e-folding table. Times are in the light
// curve's unit; EFoldMin is the e-folding time in minutes when the time axis
// is in days.
type DecayRecord struct {
	StarID    int64   `parquet:"name=tic, type=INT64"`
	Sector    int32   `parquet:"name=sector, type=INT32"`
	TStart    float64 `parquet:"name=tstart, type=DOUBLE"`
	TStop     float64 `parquet:"name=tstop, type=DOUBLE"`
	TPeak     float64 `parquet:"name=tpeak, type=DOUBLE"`
	Amplitude float64 `parquet:"name=ampl_rec, type=DOUBLE"`
	ED        float64 `parquet:"name=ed_rec, type=DOUBLE"`
	EDErr     float64 `parquet:"name=ed_rec_err, type=DOUBLE"`
	Energy    float64 `parquet:"name=energy, type=DOUBLE"`
	EnergyErr float64 `parquet:"name=energy_err, type=DOUBLE"`

	T0           float64 `parquet:"name=t0, type=DOUBLE"`
	T0Err        float64 `parquet:"name=t0_err, type=DOUBLE"`
	EFold        float64 `parquet:"name=efold, type=DOUBLE"`
	EFoldErr     float64 `parquet:"name=efold_err, type=DOUBLE"`
	EFoldMin     float64 `parquet:"name=efold_min, type=DOUBLE"`
	FitAmplitude float64 `parquet:"name=fit_ampl, type=DOUBLE"`
	FitAmplErr   float64 `parquet:"name=fit_ampl_err, type=DOUBLE"`
	RSS          float64 `parquet:"name=rss, type=DOUBLE"`
	N            int32   `parquet:"name=n, type=INT32"`
	AtBound      bool    `parquet:"name=at_bound, type=BOOLEAN"`
	Status       string  `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// DecayHeader is the CSV header matching DecayRecord.Strings.
var DecayHeader = []string{
	"TIC", "Sector", "tstart", "tstop", "tpeak", "ampl_rec", "ed_rec", "ed_rec_err",
	"energy", "energy_err", "t0", "t0_err", "efold", "efold_err", "efold_min",
	"fit_ampl", "fit_ampl_err", "rss", "n", "at_bound", "status",
}

// FromOutcome flattens a fit outcome. Failed fits keep the catalog columns
// and carry NaN fit columns.
func FromOutcome(o decay.Outcome, minutesPerUnit float64) DecayRecord {
	ev := o.Window.Event
	r := recordFromEvent(ev)
	r.Status = status(o.Err)
	if o.Err != nil {
		nan := math.NaN()
		r.T0, r.T0Err, r.EFold, r.EFoldErr, r.EFoldMin = nan, nan, nan, nan, nan
		r.FitAmplitude, r.FitAmplErr, r.RSS = nan, nan, nan
		return r
	}

	errs := o.Fit.Errors()
	r.T0, r.T0Err = o.Fit.T0, errs[0]
	r.EFold, r.EFoldErr = o.Fit.Tau, errs[1]
	r.EFoldMin = o.Fit.Tau * minutesPerUnit
	r.FitAmplitude, r.FitAmplErr = o.Fit.Amplitude, errs[2]
	r.RSS = o.Fit.RSS
	r.N = int32(o.Fit.N)
	r.AtBound = o.Fit.AtBound
	return r
}

func recordFromEvent(ev flare.Event) DecayRecord {
	return DecayRecord{
		StarID:    ev.StarID,
		Sector:    int32(ev.Sector),
		TStart:    ev.Start,
		TStop:     ev.Stop,
		TPeak:     ev.Peak,
		Amplitude: ev.Amplitude,
		ED:        ev.ED,
		EDErr:     ev.EDErr,
		Energy:    ev.Energy,
		EnergyErr: ev.EnergyErr,
	}
}

func status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, decay.ErrNoConvergence):
		return StatusNoConvergence
	case errors.Is(err, decay.ErrInvalidWindow):
		return StatusInvalid
	}
	return StatusFailed
}

// Strings formats the record for CSV, in DecayHeader order.
func (r DecayRecord) Strings() []string {
	return []string{
		formatInt(r.StarID), formatInt(int64(r.Sector)),
		formatFloat(r.TStart), formatFloat(r.TStop), formatFloat(r.TPeak),
		formatFloat(r.Amplitude), formatFloat(r.ED), formatFloat(r.EDErr),
		formatFloat(r.Energy), formatFloat(r.EnergyErr),
		formatFloat(r.T0), formatFloat(r.T0Err),
		formatFloat(r.EFold), formatFloat(r.EFoldErr), formatFloat(r.EFoldMin),
		formatFloat(r.FitAmplitude), formatFloat(r.FitAmplErr),
		formatFloat(r.RSS), formatInt(int64(r.N)), formatBool(r.AtBound), r.Status,
	}
}

// WriteDecayCSV writes the e-folding table.
func WriteDecayCSV(path string, recs []DecayRecord) error {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = r.Strings()
	}
	return WriteCSV(path, DecayHeader, rows)
}
