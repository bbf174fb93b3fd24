package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failure for display and retry decisions.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindHTTPStatus
	KindDecode
	KindTimeout
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http-status"
	case KindDecode:
		return "decode"
	case KindTimeout:
		return "timeout"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// NetworkError is returned when the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("apiclient: %s: network: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is returned for any non-2xx response. Message holds the
// server's plain text body.
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("apiclient: %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("apiclient: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
}

// DecodeError is returned when a 2xx body is not valid JSON for the target type.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("apiclient: %s: decode: %v", e.Op, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// TimeoutError is returned when the request was aborted by a deadline.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("apiclient: %s: timeout: %v", e.Op, e.Err) }
func (e *TimeoutError) Unwrap() error { return e.Err }

// ValidationError is a client-side form check failure. It is produced
// before any request is built.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// KindOf reports the taxonomy class of err.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var (
		timeoutErr *TimeoutError
		networkErr *NetworkError
		statusErr  *HTTPStatusError
		decodeErr  *DecodeError
		validErr   *ValidationError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &validErr):
		return KindValidation
	case errors.As(err, &statusErr):
		return KindHTTPStatus
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &networkErr):
		return KindNetwork
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}
	return KindUnknown
}

// IsUnauthorized reports whether the server rejected the credentials.
func IsUnauthorized(err error) bool {
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
}

// Message returns the user-facing text for err: the server's text for
// status errors, the form message for validation errors, else fallback.
func Message(err error, fallback string) string {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	var validErr *ValidationError
	if errors.As(err, &validErr) {
		return validErr.Message
	}
	return fallback
}

// classifyTransport wraps an error returned by http.Client.Do.
func classifyTransport(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op, Err: err}
	}
	return &NetworkError{Op: op, Err: err}
}
