package types

import (
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// The application distinguishes two classes of failure:
//
//   - Domain errors: bad input, duplicate key, missing record, wrong
//     credentials. The caller can fix them, so their message is safe to
//     show verbatim (HTTP 4xx).
//
//   - Infrastructure errors: the database is unreachable, the data file
//     cannot be written, ... They are logged and reported opaquely
//     (HTTP 500).
//
// A domain error is a *DomainError whose Kind is one of the sentinels
// below. Anything else is infrastructure.
// ─────────────────────────────────────────────────────────────────────────────

// Domain error kinds, for use with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
)

// DomainError is a caller-correctable failure with context.
type DomainError struct {
	Op      string // operation that failed, e.g. "AddStudent"
	Kind    error  // one of the Err* kinds above
	Message string // human-readable, shown to the caller as is
}

// Error returns the message only: it is what the UI or API client sees.
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes Kind so errors.Is(err, ErrNotFound) works.
func (e *DomainError) Unwrap() error {
	return e.Kind
}

// NewDomainError builds a DomainError with a formatted message.
func NewDomainError(op string, kind error, format string, args ...any) *DomainError {
	return &DomainError{
		Op:      op,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsDomain reports whether err (or anything it wraps) is a domain error.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a "not found" failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is a duplicate-key failure.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// StudentNotFound is the shared "no such student" error.
func StudentNotFound(op, id string) error {
	return NewDomainError(op, ErrNotFound, "student not found: %s", id)
}

// StudentExists is the shared duplicate-id error.
func StudentExists(op, id string) error {
	return NewDomainError(op, ErrAlreadyExists, "student id already exists: %s", id)
}

// GradeNotFound is the shared "no such grade" error.
func GradeNotFound(op string, id int64) error {
	return NewDomainError(op, ErrNotFound, "grade not found: %d", id)
}

// UserNotFound is the shared "no such user" error.
func UserNotFound(op, username string) error {
	return NewDomainError(op, ErrNotFound, "user not found: %s", username)
}

// UserExists is the shared duplicate-username error.
func UserExists(op, username string) error {
	return NewDomainError(op, ErrAlreadyExists, "username already exists: %s", username)
}
