package gateway

import (
	"errors"
	"net/http"
)

var (
	// ErrAgent indicates agent creation or lookup failed.
	ErrAgent = errors.New("agent operation failed")
	// ErrUpload indicates the image could not be uploaded to the project.
	ErrUpload = errors.New("file upload failed")
	// ErrThread indicates thread or message creation failed.
	ErrThread = errors.New("thread operation failed")
	// ErrRun indicates the run ended in a non-completed terminal state.
	ErrRun = errors.New("run did not complete")
	// ErrRunTimeout indicates the run did not reach a terminal state in time.
	ErrRunTimeout = errors.New("run polling timed out")
	// ErrNoOutput indicates a completed run produced no assistant text.
	ErrNoOutput = errors.New("run produced no output")
	// ErrEdit indicates the image edit request failed.
	ErrEdit = errors.New("image edit failed")
)

// MapHTTPStatus converts gateway errors into HTTP status codes. Upstream
// failures surface as bad gateway; exhausted polling as gateway timeout.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRunTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrAgent),
		errors.Is(err, ErrUpload),
		errors.Is(err, ErrThread),
		errors.Is(err, ErrRun),
		errors.Is(err, ErrNoOutput),
		errors.Is(err, ErrEdit):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
