package results

import "errors"

// ErrShape marks a row that does not match its header.
var ErrShape = errors.New("row does not match header")
