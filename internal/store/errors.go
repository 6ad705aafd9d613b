package store

import (
	"errors"

	"github.com/socdash/socdash/internal/upstream"
)

const serviceName = "store"

// ErrNotValidated is returned when Query is handed a statement that did not
// come out of sqlguard.
var ErrNotValidated = errors.New("statement has not been validated")

// ExecutionError is a failed raw query. Message is the store's own error
// text, shown to the analyst unchanged.
type ExecutionError struct {
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func newExecutionError(err error) *ExecutionError {
	return &ExecutionError{
		Message: err.Error(),
		Err:     upstream.Classify(serviceName, err),
	}
}
