package domain

import (
	"errors"
	"fmt"
)

// AuthError reports a missing, invalid or expired credential, or an action
// attempted by an unauthenticated or wrong-role actor.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return "auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError reports malformed input. The operation was not attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports an appointment status change outside the
// lifecycle table. The appointment is left unchanged.
type InvalidTransitionError struct {
	From  AppointmentStatus
	To    AppointmentStatus
	Actor Role
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s cannot move an appointment from %q to %q", e.Actor, e.From, e.To)
}

// RemoteError reports a network or server failure with the best message the
// response offered.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("remote: %s (status %d)", e.Message, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("remote: %s: %v", e.Message, e.Err)
	}
	return "remote: " + e.Message
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Conflict reports whether the server rejected the request as conflicting.
func (e *RemoteError) Conflict() bool { return e.StatusCode == 409 }

func NewAuthError(reason string) error { return &AuthError{Reason: reason} }

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

func IsRemote(err error) bool {
	var target *RemoteError
	return errors.As(err, &target)
}

// Message returns the human-readable text to show at a UI boundary.
func Message(err error) string {
	var (
		authErr   *AuthError
		valErr    *ValidationError
		remoteErr *RemoteError
	)
	switch {
	case errors.As(err, &remoteErr):
		return remoteErr.Message
	case errors.As(err, &valErr):
		if valErr.Field == "" {
			return valErr.Reason
		}
		return valErr.Field + ": " + valErr.Reason
	case errors.As(err, &authErr):
		return authErr.Reason
	case err == nil:
		return ""
	}
	return err.Error()
}
