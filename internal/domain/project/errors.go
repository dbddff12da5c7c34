package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid ingestion input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrDecode indicates the uploaded file is not a readable spreadsheet.
	// The store is left untouched.
	ErrDecode = errors.New("unreadable spreadsheet")
	// ErrPersistence indicates the store write failed; it may or may not have
	// taken effect.
	ErrPersistence = errors.New("project store write failed")
)
