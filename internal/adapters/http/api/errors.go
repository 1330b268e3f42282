package api

import (
	"errors"
	"net/http"

	service "github.com/okian/churnboard/internal/app"
	"github.com/okian/churnboard/pkg/errkind"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingField = errors.New("missing field")
	ErrRender       = errors.New("render failed")
)

// statusFor maps a pipeline error onto an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, errkind.ErrValidation):
		return http.StatusBadRequest, errkind.Name(err)
	default:
		return http.StatusInternalServerError, errkind.Name(err)
	}
}
