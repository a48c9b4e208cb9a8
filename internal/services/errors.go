package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Failure kinds. Every error returned by this package matches exactly one
// of them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInternal        = errors.New("internal error")
)

// Error is a failure of one operation. Message is safe to show to callers.
type Error struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fail(op string, kind error, message string) error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// storeError classifies a datastore error. Errors are translated by gorm,
// so missing rows and unique violations arrive as gorm sentinels.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Op: op, Kind: ErrNotFound, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Op: op, Kind: ErrConflict, Err: err}
	default:
		return &Error{Op: op, Kind: ErrInternal, Err: err}
	}
}

// PublicMessage returns the caller-facing message carried by err, if any.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
