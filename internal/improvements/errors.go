package improvements

import (
	"errors"
	"net/http"

	"github.com/fotocheck/fotocheck/internal/workflow"
)

// Domain errors for improvement operations.
var (
	ErrNotFound      = errors.New("improvement not found")
	ErrDuplicate     = errors.New("improvement already exists")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidUpload = errors.New("invalid upload")
)

// MapHTTPStatus maps improvement errors to HTTP status codes, deferring to
// the workflow mapping for correction pipeline failures.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidUpload):
		return http.StatusBadRequest
	default:
		return workflow.MapHTTPStatus(err)
	}
}
