package model

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrQueryDisabled is returned when an operation is attempted on a
	// disabled query (e.g. the owner record is not loaded yet).
	ErrQueryDisabled = errors.New("query disabled")
	// ErrCanceled is returned when the operation is canceled by the caller.
	ErrCanceled = errors.New("operation canceled")
)

// TextHTTPError is the generic user-facing label used when a transport
// failure carries no usable message.
const TextHTTPError = "HTTP error"

// RequestError is a structured transport failure. Message is optional;
// Status carries the HTTP-like status code when known.
type RequestError struct {
	Message string
	Status  int
	Err     error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return TextHTTPError
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ErrorText resolves the user-facing display string for a fetch failure.
// A structured error's message wins when present, then the plain error
// text, then the generic HTTP error label.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if s := err.Error(); s != "" {
		return s
	}
	return TextHTTPError
}

// WrapError normalizes transport errors. Context cancellation and
// deadline errors map to ErrCanceled.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsCanceled(err) {
		return ErrCanceled
	}
	return err
}

// IsCanceled returns true if the error is due to context cancellation or
// deadline exceeded. It checks both direct context errors and wrapped
// errors coming out of transport drivers.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrCanceled) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "context canceled") || strings.Contains(errStr, "context deadline exceeded")
}
