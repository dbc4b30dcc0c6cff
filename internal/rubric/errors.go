package rubric

import "errors"

var (
	// ErrInvalidOutput indicates the model response could not be normalized
	// into a rubric result.
	ErrInvalidOutput = errors.New("model output is not a valid rubric result")
)
