package ai

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes of a streaming call.
// These can be checked with errors.Is().
var (
	// ErrTransport indicates the request never produced a response
	// (DNS, dial, TLS, timeout waiting for headers).
	ErrTransport = errors.New("request failed")

	// ErrStream indicates the response body failed mid-read.
	ErrStream = errors.New("stream error")

	// ErrMalformedEvent indicates an event payload that does not match the
	// backend's wire schema.
	ErrMalformedEvent = errors.New("failed to parse provider response")

	// ErrResponseTooLarge indicates the accumulated response crossed the
	// configured size cap.
	ErrResponseTooLarge = errors.New("response too large")
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code
	Body       string // Raw response body
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// EventError is an error the backend reported inside an otherwise
// well-formed event stream.
type EventError struct {
	Provider string
	Type     string // Backend error type, if any (e.g. "overloaded_error")
	Message  string // Backend message, verbatim
}

func (e *EventError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
}

// ErrorKind returns a short label for the failure class of err, for
// metrics. It returns "" for a nil error.
func ErrorKind(err error) string {
	var apiErr *APIError
	var evErr *EventError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &evErr):
		return "backend"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrStream):
		return "stream"
	case errors.Is(err, ErrMalformedEvent):
		return "malformed"
	case errors.Is(err, ErrResponseTooLarge):
		return "too_large"
	default:
		return "other"
	}
}
