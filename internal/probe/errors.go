package probe

import "errors"

// Sentinel errors for this package.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrInconsistent = errors.New("inconsistent response")
)
