package device

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotOpen is returned by Open before a reader was detected.
	ErrDeviceNotOpen = errors.New("device not open")

	// ErrDeleteUnsupported is returned by Delete.
	ErrDeleteUnsupported = errors.New("delete not supported")

	// ErrInMemoryUpload is returned by Upload for a source with no path on disk.
	ErrInMemoryUpload = errors.New("in-memory upload not supported")
)

// ControlError reports an operation attempted in the wrong session state or
// one the reader cannot perform. It is never retried.
type ControlError struct {
	Op   string
	Desc string
	Err  error
}

func (e *ControlError) Error() string {
	if e.Desc == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Desc)
}

func (e *ControlError) Unwrap() error {
	return e.Err
}

// IsControlError reports whether err is or wraps a *ControlError.
func IsControlError(err error) bool {
	var ce *ControlError
	return errors.As(err, &ce)
}
