// Package upstream classifies failures of the two external collaborators
// (the event store and the language model) so callers can tell a slow or
// unreachable dependency apart from a request that was simply invalid.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUnavailable matches any failure to reach a collaborator.
	ErrUnavailable = errors.New("service offline")

	// ErrTimeout matches a collaborator call that exceeded its deadline.
	// Timeouts also match ErrUnavailable.
	ErrTimeout = errors.New("service timed out")
)

// Error is returned when a collaborator call could not be completed.
type Error struct {
	Service string
	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinels above.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return true
	case ErrTimeout:
		return e.Timeout
	}
	return false
}

// Unavailable wraps err as a connectivity failure of service.
func Unavailable(service string, err error) error {
	return &Error{Service: service, Err: err}
}

// Classify inspects err and wraps it as an *Error when it is a deadline,
// cancellation or network failure. Any other error is returned unchanged,
// and nil stays nil.
func Classify(service string, err error) error {
	if err == nil {
		return nil
	}

	var upErr *Error
	if errors.As(err, &upErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Service: service, Timeout: true, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Service: service, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Service: service, Timeout: netErr.Timeout(), Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Service: service, Err: err}
	}

	return err
}
