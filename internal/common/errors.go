// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrDuplicateEntry is a write that collides with an existing row.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrAlreadyImported means the user's one-time import is already stored.
	ErrAlreadyImported = errors.New("transactions already imported")

	// Request errors.
	ErrValidation = errors.New("validation failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// NewValidationError is a UserError wrapping ErrValidation.
func NewValidationError(userMessage string) error {
	return NewUserError(userMessage, ErrValidation)
}

// UserMessage extracts the message meant for the caller. Errors that are not
// UserErrors surface their own text.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
