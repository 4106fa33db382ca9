package units

import "errors"

var (
	// ErrDivideByZero is returned instead of an infinite ratio.
	ErrDivideByZero = errors.New("division by zero")
	// ErrBadBand marks an unusable wavelength/response grid.
	ErrBadBand = errors.New("invalid passband")
)
