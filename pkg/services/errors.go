package services

import (
	"errors"
	"fmt"
)

// Kinds of FatalError.
const (
	KindStore      = "store"
	KindFilesystem = "filesystem"
)

// FatalError is a failure that aborts the current comic's cycle instead of
// being recorded as a Failed chapter or page.
type FatalError struct {
	Kind string
	Op   string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func (e *FatalError) ErrorKind() string {
	return e.Kind
}

func storeError(op string, err error) error {
	return &FatalError{Kind: KindStore, Op: op, Err: err}
}

func filesystemError(op string, err error) error {
	return &FatalError{Kind: KindFilesystem, Op: op, Err: err}
}

// IsFatal reports whether err wraps a FatalError.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// ErrorKind returns the kind of a FatalError in err's chain, or "unknown".
func ErrorKind(err error) string {
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return fatal.Kind
	}
	return "unknown"
}
