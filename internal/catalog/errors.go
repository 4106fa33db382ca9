package catalog

import "errors"

var (
	// ErrMissingColumn marks a table without a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrParse marks a cell that is not a number.
	ErrParse = errors.New("unparsable value")
	// ErrNoSamples marks a selection with no light-curve samples.
	ErrNoSamples = errors.New("no samples")
	// ErrZeroMedian marks a light curve that cannot be normalised.
	ErrZeroMedian = errors.New("zero median flux")
	// ErrNotTable marks a FITS file without a table extension.
	ErrNotTable = errors.New("no FITS table extension")
)
