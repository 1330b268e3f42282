package dataset

import "errors"

// Sentinel errors for this package.
var (
	ErrEmpty         = errors.New("dataset has no records")
	ErrMissingColumn = errors.New("dataset is missing required columns")
	ErrBadCell       = errors.New("dataset cell is malformed")
)
