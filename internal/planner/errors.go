package planner

import "errors"

// Error kinds. Every error returned by this package wraps exactly one of them,
// and no error leaves the state changed.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrFormat     = errors.New("format error")
)
