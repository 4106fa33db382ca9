package errprop

import (
	"fmt"
	"math"
	"sort"
)

// Percentiles summarises a posterior by its 16th, 50th and 84th percentiles.
type Percentiles struct {
	P16, P50, P84 float64
}

// FromSamples computes the percentiles of x. x is not modified.
func FromSamples(x []float64) (Percentiles, error) {
	if len(x) == 0 {
		return Percentiles{}, fmt.Errorf("%w: no samples", ErrEmpty)
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	return Percentiles{
		P16: quantile(0.16, s),
		P50: quantile(0.50, s),
		P84: quantile(0.84, s),
	}, nil
}

// quantile interpolates linearly between the order statistics of the sorted
// s at h = (n-1)p (Hyndman and Fan type 7).
func quantile(p float64, s []float64) float64 {
	h := float64(len(s)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(s) {
		return s[len(s)-1]
	}
	return s[i] + (h-lo)*(s[i+1]-s[i])
}

// Sigma is the 1σ proxy (p84 - p16) / 2.
func (p Percentiles) Sigma() float64 {
	return (p.P84 - p.P16) / 2
}

// Minus is the lower error bar p50 - p16.
func (p Percentiles) Minus() float64 {
	return p.P50 - p.P16
}

// Plus is the upper error bar p84 - p50.
func (p Percentiles) Plus() float64 {
	return p.P84 - p.P50
}

// Scale multiplies all three percentiles by f.
func (p Percentiles) Scale(f float64) Percentiles {
	return Percentiles{P16: p.P16 * f, P50: p.P50 * f, P84: p.P84 * f}
}
