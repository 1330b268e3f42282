package insight

import "errors"

// ErrInvalidLabel is returned when asked to render a label outside {0,1}.
var ErrInvalidLabel = errors.New("insight: invalid label")
