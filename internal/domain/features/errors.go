package features

import "errors"

// ErrSchemaMismatch reports a feature list that does not match Columns.
var ErrSchemaMismatch = errors.New("feature schema mismatch")
