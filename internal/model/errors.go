package model

// ValidationError reports bad input shape, length, or format. Handlers map it
// to a 400 with the message shown to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
