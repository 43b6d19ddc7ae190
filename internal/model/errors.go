package model

import "fmt"

// InputError reports malformed top-level input handed to the pipeline,
// e.g. a payload that is not a well-formed invoice list. It is distinct
// from validation diagnostics, which are data, not errors.
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s (%v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// NewInputError creates a new input error.
func NewInputError(message string, cause error) *InputError {
	return &InputError{Message: message, Cause: cause}
}
