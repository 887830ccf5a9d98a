package vector

import "errors"

// Sentinel kinds for vector math errors.
var (
	// ErrDimensionMismatch means two vectors of different lengths were
	// compared. In production this signals embeddings produced by
	// different model versions and should be logged distinctly.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyInput means a centroid was requested over zero vectors.
	ErrEmptyInput = errors.New("empty vector list")
)
