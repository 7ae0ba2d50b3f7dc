package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// them under errors.Is; handlers map the kind to an HTTP status.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrDelivery        = errors.New("upstream delivery failed")
	ErrInternal        = errors.New("internal server error")
)

// Error is a user-facing message tagged with its kind and an optional cause.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func invalid(msg string) error { return newError(ErrValidation, msg) }

func delivery(msg string, cause error) error {
	return &Error{Kind: ErrDelivery, Msg: msg, Cause: cause}
}

// internal wraps an unexpected failure; the message is never shown to clients.
func internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

var (
	ErrCodeExpired         = newError(ErrValidation, "OTP expired or not sent. Please request a new OTP.")
	ErrCodeMismatch        = newError(ErrValidation, "Invalid OTP. Please check and try again.")
	ErrUnverified          = newError(ErrForbidden, "OTP not verified. Please verify the OTP first.")
	ErrDuplicateEmail      = newError(ErrConflict, "Email already registered")
	ErrDuplicateRollNumber = newError(ErrConflict, "Roll number already registered")
	ErrDuplicateUsername   = newError(ErrConflict, "Username already taken")
	ErrAlreadyLiked        = newError(ErrConflict, "Already liked")
	ErrSelfFollow          = newError(ErrValidation, "You cannot follow/unfollow yourself")
	ErrInvalidCredentials  = newError(ErrUnauthenticated, "Incorrect email or password")
	ErrUserNotFound        = newError(ErrNotFound, "User not found")
	ErrPostNotFound        = newError(ErrNotFound, "Post not found")
	ErrEventNotFound       = newError(ErrNotFound, "Event not found")
	ErrCommentNotFound     = newError(ErrNotFound, "Comment not found")
	ErrResumeNotFound      = newError(ErrNotFound, "No resume found")
	ErrFacultyOnly         = newError(ErrForbidden, "Only faculty members can create events")
	ErrFacultyResume       = newError(ErrForbidden, "Faculty members cannot upload resumes")
	ErrNotContentOwner     = newError(ErrForbidden, "Not authorized to delete this content")
	ErrNotCommentOwner     = newError(ErrForbidden, "Not authorized to delete this comment")
)
