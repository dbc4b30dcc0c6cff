package workflow

import (
	"errors"
	"net/http"

	"github.com/fotocheck/fotocheck/internal/gateway"
	"github.com/fotocheck/fotocheck/internal/rubric"
)

var (
	// ErrInvalidRequest indicates the request failed validation before any
	// remote call was made.
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus converts workflow errors into HTTP status codes, deferring
// to the gateway mapping for upstream failures.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, rubric.ErrInvalidOutput):
		return http.StatusBadGateway
	default:
		return gateway.MapHTTPStatus(err)
	}
}
