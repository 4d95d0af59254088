package services

import "errors"

// ErrInsufficientCredits is returned when the balance does not cover a deduction.
var ErrInsufficientCredits = errors.New("insufficient credits")

// ValidationError is a rejected request. Message is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports a missing table or row.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

func notFound(message string) error {
	return &NotFoundError{Message: message}
}
