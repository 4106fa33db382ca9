package render

import "errors"

var (
	// ErrLength marks coordinate slices of different lengths.
	ErrLength = errors.New("mismatched data lengths")
	// ErrEmpty marks a figure with nothing to draw.
	ErrEmpty = errors.New("nothing to plot")
	// ErrNoGnuplot marks a preview requested without gnuplot installed.
	ErrNoGnuplot = errors.New("gnuplot not available")
)
