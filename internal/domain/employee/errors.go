package employee

import "errors"

// Sentinel errors for this package.
var (
	ErrUnknownSalaryTier = errors.New("unknown salary tier")
	ErrOutOfRange        = errors.New("value out of range")
)
