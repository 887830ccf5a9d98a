package embedding

import "errors"

// Sentinel kinds for embedding gateway errors.
var (
	// ErrInvalidInput means the text was empty after normalization.
	ErrInvalidInput = errors.New("invalid embedding input")

	// ErrProviderUnavailable means the provider was unreachable or
	// returned a non-success status.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrDimensionMismatch means the provider returned a vector of an
	// unexpected length, signaling a model configuration drift.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
