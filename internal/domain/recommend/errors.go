package recommend

import "errors"

// Sentinel kinds for recommendation errors.
var (
	// ErrInvalidLimit means the requested result limit was not positive.
	ErrInvalidLimit = errors.New("invalid recommendation limit")
)
