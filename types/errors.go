package types

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when a task id is not in the registry.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError marks malformed request or credential data. Handlers
// map it to a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// EngineError is a failure reported by the extraction engine for a
// given URL. AuthRequired is set when the message matches a sign-in or
// bot-check gate; CookiesAvailable then tells the caller whether a
// credential source was configured for the failed attempt.
type EngineError struct {
	Msg              string
	AuthRequired     bool
	CookiesAvailable bool
}

func (e *EngineError) Error() string { return e.Msg }
