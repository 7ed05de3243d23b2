package api

import (
	"fmt"

	"github.com/devconnect/devconnect-go/internal/domain"
)

// Error is a failed API request: either the request never completed or the
// backend answered with a non-2xx status.
type Error struct {
	// Status is the HTTP status code, 0 when the request never reached the
	// server.
	Status int

	// Message is the backend's error body, or empty.
	Message string

	// Err is the underlying transport error, or domain.ErrNotFound for a
	// 404 response.
	Err error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func statusError(status int, body []byte) *Error {
	e := &Error{
		Status:  status,
		Message: string(body),
	}
	if status == 404 {
		e.Err = domain.ErrNotFound
	}
	return e
}
