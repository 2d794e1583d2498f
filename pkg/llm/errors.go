package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// TransientError represents a temporary failure that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent failure that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal reports whether err must not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// classifyHTTPError maps a non-2xx status to a transient or fatal error.
func classifyHTTPError(statusCode int, body []byte) error {
	text := string(body)
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	err := fmt.Errorf("completion API error (status %d): %s", statusCode, text)

	switch {
	case statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}
