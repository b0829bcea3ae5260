package odk

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedURL is returned when the host of a connection url cannot be determined.
	ErrMalformedURL = errors.New("malformed url")
	// ErrMissingField is returned when an otherwise valid response lacks a key the provider relies on.
	ErrMissingField = errors.New("missing field")
	// ErrUnexpectedShape is returned when a response decodes as JSON but not into the expected structure.
	ErrUnexpectedShape = errors.New("unexpected response shape")
	// ErrInvalidJSON is the cause attached to a ConnectionError when a body is not JSON.
	ErrInvalidJSON = errors.New("response body is not valid json")
	// ErrMalformedID is returned when an identifier cannot be interpreted by a provider.
	ErrMalformedID = errors.New("malformed id")
	// ErrUnknownProvider is returned when asking for a provider kind that does not exist.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ConnectionError is the failure outcome of a round trip: either the
// request never completed or its body could not be parsed.
type ConnectionError struct {
	Url   string
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Url, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// StatusError is returned by listing operations when the server answers with
// a non-2xx status.
type StatusError struct {
	Url        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s responded with status %d: %s", e.Url, e.StatusCode, body)
}

// MissingField wraps ErrMissingField with the name of the absent key.
func MissingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
