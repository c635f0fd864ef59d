package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned (wrapped) for any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// ErrTransport matches every *TransportError via errors.Is.
var ErrTransport = errors.New("transport failure")

// StatusError is a non-2xx, non-401 response: the server understood the
// request and rejected it.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// TransportError means no usable response was obtained: the request failed
// on the wire or the body could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport as a match.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// IsRejected reports whether err is a *StatusError.
func IsRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// StatusCode extracts the HTTP status from a *StatusError, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
