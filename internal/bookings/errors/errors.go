package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrLocked means another request holds the room type's booking lock.
	ErrLocked = errors.New("room type is locked by another booking")
)
