// Package latex formats single values and small tables for inclusion in the
// paper with \input. Each fragment is a complete inline math expression.
package latex

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HamletTheHamster/xray-flare-loops/internal/errprop"
	"github.com/HamletTheHamster/xray-flare-loops/internal/ffd"
)

// Unit suffixes used in the fragments.
const (
	PerDay  = `\,\mathrm{d}^{-1}`
	ErgS    = `\,\rm{erg s}^{-1}`
	MK      = `\,$MK`
	ErgUnit = `\,$erg`
)

// UpLow formats v with asymmetric errors as v_{-minus}^{+plus}.
func UpLow(v, minus, plus float64, prec int) string {
	return fmt.Sprintf("%.*f_{-%.*f}^{+%.*f}", prec, v, prec, minus, prec, plus)
}

// PlusMinus formats v \pm e.
func PlusMinus(v, e float64, prec int) string {
	return fmt.Sprintf(`%.*f \pm %.*f`, prec, v, prec, e)
}

// Times10 appends \times 10^{exp}.
func Times10(exp int) string {
	return fmt.Sprintf(`\times 10^{%d}`, exp)
}

// SciNote writes x as 10^{n} or m\cdot 10^{n} with one significant digit.
func SciNote(x float64) string {
	s := fmt.Sprintf("%.0e", x)
	mant, exp, _ := strings.Cut(s, "e")
	exp = strings.TrimLeft(strings.TrimPrefix(exp, "+"), "0")
	if strings.HasPrefix(exp, "-") {
		exp = "-" + strings.TrimLeft(exp[1:], "0")
	}
	if exp == "" {
		exp = "0"
	}
	if mant == "1" {
		return `10^{` + exp + `}`
	}
	return mant + `\cdot 10^{` + exp + `}`
}

// Alpha is the FFD slope with its asymmetric errors.
func Alpha(p ffd.Params) string {
	return "$" + UpLow(p.Alpha, p.AlphaLowErr, p.AlphaUpErr, 2) + "$"
}

// Beta is log10 of the FFD intercept with errors carried into log space.
func Beta(p ffd.Params) (string, error) {
	if p.Beta <= 0 || p.Beta-p.BetaLowErr <= 0 {
		return "", fmt.Errorf("%w: beta %v - %v", ErrNotPositive, p.Beta, p.BetaLowErr)
	}
	lb := math.Log10(p.Beta)
	lo := lb - math.Log10(p.Beta-p.BetaLowErr)
	hi := math.Log10(p.Beta+p.BetaUpErr) - lb
	return "$" + UpLow(lb, lo, hi, 2) + PerDay + "$", nil
}

// LogRate is a log10 rate per day, as used for R31.5.
func LogRate(r float64) string {
	return fmt.Sprintf("$%.2f", r) + PerDay + "$"
}

// Luminosity formats L \pm e in units of 10^exp erg/s.
func Luminosity(l, e float64, exp, prec int) string {
	k := math.Pow(10, float64(exp))
	return "$" + PlusMinus(l/k, e/k, prec) + Times10(exp) + ErgS + "$"
}

// Flux formats an X-ray flux in units of 10^-14 erg/s/cm^2.
func Flux(f, e float64) string {
	return "$" + PlusMinus(f*1e14, e*1e14, 1) + Times10(-14) + ` \,\rm{erg}\, \rm{cm}^{-2} \rm{s}^{-1}$`
}

// Ratio formats a small dimensionless ratio in units of 10^-4.
func Ratio(r, e float64) string {
	return "$" + PlusMinus(r*1e4, e*1e4, 1) + Times10(-4) + "$"
}

// Temperature formats posterior percentiles in MK.
func Temperature(p errprop.Percentiles) string {
	return "$" + UpLow(p.P50, p.Minus(), p.Plus(), 1) + MK
}

// MeanTemperature formats a single temperature in MK.
func MeanTemperature(t float64) string {
	return fmt.Sprintf("$%.1f", t) + MK
}

// Energy formats a flare energy in units of 10^30 erg.
func Energy(e, ee float64) string {
	return fmt.Sprintf(`$%.1f\pm%.1f`, e/1e30, ee/1e30) + Times10(30) + ErgUnit
}

// Loop formats a loop size in stellar radii.
func Loop(l float64) string {
	return fmt.Sprintf(`$%.2f R_*$`, l)
}

// WriteFragment writes body to dir/name, creating dir.
func WriteFragment(dir, name, body string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, []byte(body), 0o644)
}
