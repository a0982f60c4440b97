package backend

import "errors"

var (
	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid backend base URL")

	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrMissingTaskID is returned when a submission response carries no task id.
	ErrMissingTaskID = errors.New("solver returned no task id")
)
