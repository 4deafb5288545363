package application

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and disabled
	// accounts alike so login never reveals which one applied.
	ErrInvalidCredentials = errors.New("invalid credentials or account disabled")

	// ErrTokenNotFound, ErrTokenUsed and ErrTokenExpired report why a reset
	// token was refused.
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenUsed     = errors.New("reset token already used")
	ErrTokenExpired  = errors.New("reset token expired")

	// ErrSMTPNotConfigured is returned when mail is requested before an SMTP
	// relay was saved.
	ErrSMTPNotConfigured = errors.New("smtp is not configured")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("missing required field: %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field}
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
