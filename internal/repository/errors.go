package repository

import "errors"

var (
	// ErrNotFound is returned when a requested key doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidKey is returned when a blob key is empty or escapes its namespace
	ErrInvalidKey = errors.New("invalid key")
)
