package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrDuplicate     = errors.New("duplicate record")
)

// CorruptDataError reports a persisted collection that cannot be decoded
// into typed records. Index is -1 when the whole payload is unreadable.
type CorruptDataError struct {
	Key   string
	Index int
	Err   error
}

func (e *CorruptDataError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("corrupt collection %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("corrupt collection %q at index %d: %v", e.Key, e.Index, e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}
