package availability

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat      = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidRange       = errors.New("check_out must be after check_in")
	ErrPastDate           = errors.New("check_in cannot be in the past")
	ErrNotFound           = errors.New("room type not found")
	ErrRoomFull           = errors.New("room type is fully booked for the requested dates")
	ErrDuplicateReference = errors.New("booking reference already exists")
)

// StoreError marks a failure of the backing store (connection, timeout,
// driver error) as opposed to a domain outcome.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}

// storeErr passes domain sentinels through untouched and wraps everything
// else as a StoreError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateReference) || IsStoreError(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
