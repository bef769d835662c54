package entity

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of them,
// so callers classify with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrUnavailable      = errors.New("unavailable")
)

// KindError is a concrete failure tagged with its kind.
type KindError struct {
	Kind error
	Msg  string
}

func (e *KindError) Error() string { return e.Msg }

func (e *KindError) Unwrap() error { return e.Kind }

func newKindError(kind error, msg string) *KindError {
	return &KindError{Kind: kind, Msg: msg}
}

var (
	// Event errors
	ErrEventNotFound = newKindError(ErrNotFound, "event not found")

	// Registration errors
	ErrRSVPNotFound      = newKindError(ErrNotFound, "rsvp not found")
	ErrVolunteerNotFound = newKindError(ErrNotFound, "volunteer registration not found")
	ErrVolunteerExists   = newKindError(ErrConflict, "user is already registered as volunteer for this event")

	// User errors
	ErrUserNotFound  = newKindError(ErrNotFound, "user not found")
	ErrUserHasEvents = newKindError(ErrConflict, "cannot delete user who has organized events")

	// Access errors
	ErrUnauthenticated   = newKindError(ErrPermissionDenied, "authentication required")
	ErrAdminOnly         = newKindError(ErrPermissionDenied, "admin role required")
	ErrCannotManage      = newKindError(ErrPermissionDenied, "you don't have permission to manage this event")
	ErrOrganizerRequired = newKindError(ErrPermissionDenied, "only organizers can create events")
)

// Validationf builds a ValidationFailed error with a user facing message.
func Validationf(format string, args ...interface{}) error {
	return newKindError(ErrValidation, fmt.Sprintf(format, args...))
}

// Unavailable wraps a store or transport failure.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// Conflictf builds a Conflict error with a user facing message.
func Conflictf(format string, args ...interface{}) error {
	return newKindError(ErrConflict, fmt.Sprintf(format, args...))
}
