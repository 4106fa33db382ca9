package flare

import "errors"

// ErrInvalidEvent marks a flare whose times or amplitude cannot define a fit window.
var ErrInvalidEvent = errors.New("invalid flare event")
