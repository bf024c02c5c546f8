package store

import (
	"errors"
	"fmt"
)

// ErrInvalidDate rejects a date string that is not YYYY-MM-DD with a
// month in 1-12 and a day in 1-31.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// CorruptError reports a backing file that exists but cannot be parsed.
// It is returned from Open so the operator can decide whether to repair
// the file or start over; the store never discards it on its own.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("birthday file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}
