package service

import (
	"errors"
	"fmt"
)

// Error kinds returned by the data access functions. Match them with errors.Is.
var (
	ErrAuth     = errors.New("auth error")
	ErrCreation = errors.New("creation error")
	ErrFetch    = errors.New("fetch error")
	ErrUpload   = errors.New("upload error")
	ErrUpdate   = errors.New("update error")
)

// ErrInvalidInput is the cause of every failure rejected before reaching the
// backend.
var ErrInvalidInput = errors.New("invalid input")

// Error records the failed operation, its kind and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func wrap(op string, kind error, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the error kind carried by err, or nil.
func KindOf(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return nil
}
