// Package errprop propagates 1σ uncertainties to first order. Every formula is
// the linearised partial-derivative sum of squares; no sampling is involved.
package errprop

import (
	"fmt"
	"math"
)

// WeightedMean returns (t1 n1 + t2 n2) / (n1 + n2).
func WeightedMean(t1, n1, t2, n2 float64) (float64, error) {
	if n1+n2 == 0 {
		return 0, fmt.Errorf("%w: weights sum to zero", ErrDivideByZero)
	}
	return (t1*n1 + t2*n2) / (n1 + n2), nil
}

// WeightedMeanError propagates the errors of both values and both weights
// into the weighted mean.
func WeightedMeanError(
	t1, σt1, n1, σn1 float64,
	t2, σt2, n2, σn2 float64,
) (
	float64, error,
) {

	s := n1 + n2
	if s == 0 {
		return 0, fmt.Errorf("%w: weights sum to zero", ErrDivideByZero)
	}

	e2 := math.Pow(σt1*n1/s, 2) +
		math.Pow(σt2*n2/s, 2) +
		math.Pow(σn1*n2*(t2-t1)/(s*s), 2) +
		math.Pow(σn2*n1*(t1-t2)/(s*s), 2)

	return math.Sqrt(e2), nil
}

// WeightedMeanPercentiles combines two posterior temperatures weighted by
// their emission measures, using each median as the value and the 16-84
// half-width as its σ.
func WeightedMeanPercentiles(t1, n1, t2, n2 Percentiles) (float64, float64, error) {
	mean, err := WeightedMean(t1.P50, n1.P50, t2.P50, n2.P50)
	if err != nil {
		return 0, 0, err
	}
	σ, err := WeightedMeanError(
		t1.P50, t1.Sigma(), n1.P50, n1.Sigma(),
		t2.P50, t2.Sigma(), n2.P50, n2.Sigma(),
	)
	if err != nil {
		return 0, 0, err
	}
	return mean, σ, nil
}

// Ratio returns num/den.
func Ratio(num, den float64) (float64, error) {
	if den == 0 {
		return 0, fmt.Errorf("%w: ratio denominator", ErrDivideByZero)
	}
	return num / den, nil
}

// RatioError returns the error of n2/n1:
// (n2/n1) sqrt((σn1/n1)^2 + (σn2/n2)^2).
func RatioError(n1, σn1, n2, σn2 float64) (float64, error) {
	if n1 == 0 || n2 == 0 {
		return 0, fmt.Errorf("%w: relative error of a zero value", ErrDivideByZero)
	}
	r := n2 / n1
	return math.Abs(r) * math.Sqrt(math.Pow(σn1/n1, 2)+math.Pow(σn2/n2, 2)), nil
}

// ProductError returns the error of a*b.
func ProductError(a, σa, b, σb float64) float64 {
	return math.Sqrt(math.Pow(b*σa, 2) + math.Pow(a*σb, 2))
}
