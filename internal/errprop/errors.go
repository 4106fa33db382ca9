package errprop

import "errors"

var (
	// ErrDivideByZero is returned instead of an infinite ratio or mean.
	ErrDivideByZero = errors.New("division by zero")
	// ErrEmpty marks an empty sample set.
	ErrEmpty = errors.New("empty samples")
)
