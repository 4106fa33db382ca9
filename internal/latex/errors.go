package latex

import "errors"

var (
	// ErrShape marks a row with the wrong number of cells.
	ErrShape = errors.New("row does not match columns")
	// ErrNotPositive marks a value that has no logarithm.
	ErrNotPositive = errors.New("value must be positive")
)
