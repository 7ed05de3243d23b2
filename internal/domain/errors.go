package domain

import "errors"

// Validation and state errors. These are all detected before any request is
// sent, so a caller seeing one knows the backend was never contacted.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyContent     = errors.New("content must not be empty")
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrBusy             = errors.New("another mutation is already in flight")
	ErrClosed           = errors.New("view is closed")
)

// ErrNotFound is wrapped by the API gateway when the backend answers 404,
// notably for a profile lookup on an unknown user.
var ErrNotFound = errors.New("not found")
