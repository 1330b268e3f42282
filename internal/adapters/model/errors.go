package model

import "errors"

// Sentinel errors for this package.
var (
	ErrUnknownFormat = errors.New("unknown model format")
	ErrMalformed     = errors.New("malformed model artifact")
)
