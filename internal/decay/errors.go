package decay

import "errors"

var (
	// ErrInvalidWindow marks a flare or segment that violates the fit
	// preconditions. The window is rejected, never clamped.
	ErrInvalidWindow = errors.New("invalid fit window")
	// ErrNoConvergence marks a fit the solver could not complete.
	ErrNoConvergence = errors.New("decay fit did not converge")
)
