package ffd

import "errors"

var (
	// ErrDomain marks inputs outside alpha > 1, E > 0.
	ErrDomain = errors.New("outside power-law domain")
	// ErrUnsorted marks energies that are not ascending.
	ErrUnsorted = errors.New("energies not sorted ascending")
	// ErrNoConvergence marks a power-law fit the solver could not complete.
	ErrNoConvergence = errors.New("power-law fit did not converge")
)
