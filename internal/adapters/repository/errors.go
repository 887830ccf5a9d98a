package repository

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")

	// ErrUnavailable indicates the store cannot serve requests.
	ErrUnavailable = errors.New("repository: storage unavailable")

	// ErrInvalidInput indicates a malformed entity or query.
	ErrInvalidInput = errors.New("repository: invalid input")
)
