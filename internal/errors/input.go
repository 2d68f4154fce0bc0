package errors

import "errors"

// InputError represents an invalid request from the caller, such as a
// resolution attempt with no usable movie ID. Never retried.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// NewInputError creates an InputError with the provided message.
func NewInputError(message string) *InputError {
	return &InputError{Message: message}
}

// IsInputError reports whether err is an InputError (even when wrapped).
func IsInputError(err error) bool {
	var inErr *InputError
	return errors.As(err, &inErr)
}
