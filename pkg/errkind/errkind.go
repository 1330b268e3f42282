// Package errkind classifies failures into the small set of kinds the
// dashboard reacts to: fatal startup data problems, user input problems and
// classifier contract violations.
package errkind

import (
	"errors"
	"strings"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrValidation      = errors.New("validation failed")
	ErrModelInvocation = errors.New("model invocation failed")
)

// Error carries the operation that failed, its kind and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		if e.Kind != nil {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind without a cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind attaches a kind and operation to err. A nil err yields nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf reports which known kind err belongs to, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrModelInvocation, ErrDataUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Name returns a short snake_case label for err's kind, used in metrics and
// API error codes.
func Name(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "validation"
	case ErrModelInvocation:
		return "model_invocation"
	case ErrDataUnavailable:
		return "data_unavailable"
	default:
		return "internal"
	}
}
