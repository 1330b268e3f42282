package predict

import "errors"

// Sentinel errors for this package.
var (
	ErrLabelOutOfDomain = errors.New("classifier returned a label outside {0,1}")
	ErrShapeMismatch    = errors.New("feature vector shape does not match the model")
)
