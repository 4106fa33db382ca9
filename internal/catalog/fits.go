package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"github.com/astrogo/fitsio"
)

// readFITSColumns reads float columns from the first table extension.
// Missing required columns are an error; missing optional ones are left out
// of the result.
func readFITSColumns(path string, required []string, optional ...string) (map[string][]float64, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if len(f.HDUs()) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrNotTable, path)
	}
	tbl, ok := f.HDU(1).(*fitsio.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotTable, path)
	}

	names := make([]string, 0, len(required)+len(optional))
	for _, n := range required {
		if tbl.Index(n) < 0 {
			return nil, fmt.Errorf("%w: %s has no %q", ErrMissingColumn, path, n)
		}
		names = append(names, n)
	}
	for _, n := range optional {
		if tbl.Index(n) >= 0 {
			names = append(names, n)
		}
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer rows.Close()

	out := make(map[string][]float64, len(names))
	line := 0
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, line, err)
		}
		for _, n := range names {
			v, err := toFloat(row[n])
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", path, line, n, err)
			}
			out[n] = append(out[n], v)
		}
		line++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%w: %T", ErrParse, v)
}

// ReadLightCurveFITS reads a detrended TESS light curve. Cadences with a
// non-finite time or detrended flux are dropped.
func ReadLightCurveFITS(path string, sector int) (flare.Segment, error) {
	cols, err := readFITSColumns(path, []string{"TIME", "DETRENDED_FLUX"}, "FLUX")
	if err != nil {
		return flare.Segment{}, err
	}

	t, y, raw := cols["TIME"], cols["DETRENDED_FLUX"], cols["FLUX"]
	seg := flare.Segment{Sector: sector}
	for i := range t {
		if !finite(t[i]) || !finite(y[i]) {
			continue
		}
		s := flare.Sample{Time: t[i], Flux: y[i]}
		if raw != nil {
			s.RawFlux = raw[i]
		}
		seg.Samples = append(seg.Samples, s)
	}
	seg.Sort()
	return seg, nil
}

// Chain is the two-temperature MCMC chain of one subset after burn-in, in
// MK and 1e-6 norm units.
type Chain struct {
	Subset string
	T1     []float64
	Norm1  []float64
	T2     []float64
	Norm2  []float64
}

// Chain column names of the joint two-component fit.
const (
	chainT1    = "kT__1"
	chainNorm1 = "norm__16"
	chainT2    = "kT__17"
	chainNorm2 = "norm__32"
)

// ReadChain reads an MCMC chain, drops the first burnIn steps and converts
// kT from keV to MK and the norms to units of 1e-6.
func ReadChain(path, subset string, burnIn int, keVToMK float64) (Chain, error) {
	cols, err := readFITSColumns(path, []string{chainT1, chainNorm1, chainT2, chainNorm2})
	if err != nil {
		return Chain{}, err
	}
	n := len(cols[chainT1])
	if burnIn >= n {
		return Chain{}, fmt.Errorf("%w: %s has %d steps, burn-in %d", ErrNoSamples, path, n, burnIn)
	}
	if burnIn < 0 {
		burnIn = 0
	}

	scale := func(x []float64, k float64) []float64 {
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = v * k
		}
		return out
	}
	return Chain{
		Subset: subset,
		T1:     scale(cols[chainT1][burnIn:], keVToMK),
		Norm1:  scale(cols[chainNorm1][burnIn:], 1e6),
		T2:     scale(cols[chainT2][burnIn:], keVToMK),
		Norm2:  scale(cols[chainNorm2][burnIn:], 1e6),
	}, nil
}

// ReadLightCurve reads a light curve from a .csv table or a FITS file.
func ReadLightCurve(path string, sector int) (flare.Segment, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadLightCurveCSV(path, sector)
	}
	return ReadLightCurveFITS(path, sector)
}
