// Package apperrors defines the failure kinds the scheduling core reports.
// Services return these wrapped (or bare) so HTTP handlers can branch with
// errors.As instead of matching on message text.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError marks a malformed or self-contradictory request, such as an
// assignment with neither van nor driver, or pairing rows on different dates.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a reference to an entity that does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// NotFound builds a NotFoundError for the named entity.
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// ConflictError marks a violated uniqueness invariant, either detected by the
// pre-write scan or raised by the store at commit time.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError from a format string.
func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
