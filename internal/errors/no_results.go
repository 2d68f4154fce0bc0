package errors

import "errors"

// NoResultsError signals that a discovery request matched nothing.
// It is a domain outcome, not an upstream failure: callers should present
// the message to the user instead of retrying.
type NoResultsError struct {
	Message string
}

func (e *NoResultsError) Error() string {
	return e.Message
}

// NewNoResultsError creates a NoResultsError with the provided message.
func NewNoResultsError(message string) *NoResultsError {
	return &NoResultsError{Message: message}
}

// IsNoResultsError reports whether err is a NoResultsError (even when wrapped).
func IsNoResultsError(err error) bool {
	var nrErr *NoResultsError
	return errors.As(err, &nrErr)
}
