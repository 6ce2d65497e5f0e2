package projective

import "errors"

// Sentinel errors returned by the solver. Wrapped errors carry details; use
// errors.Is to test for them.
var (
	// ErrDegenerateGeometry is returned when three of the four points are
	// collinear, points coincide, or the homogeneous scale term vanishes.
	// No unique projective transform exists for such input.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInvalidInput is returned for a wrong number of points or for
	// coordinates that are NaN or infinite.
	ErrInvalidInput = errors.New("invalid input")
)
