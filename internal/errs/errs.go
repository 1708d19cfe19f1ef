package errs

import "errors"

var (
	// ErrCaseNotFound is returned by all store operations on an absent case id.
	ErrCaseNotFound = errors.New("case not found")

	// ErrInvalidStatus is returned for a status outside {open, resolved}.
	ErrInvalidStatus = errors.New("invalid case status")

	// ErrEmptyNote is returned when resolving a case with a blank note.
	ErrEmptyNote = errors.New("resolution note is empty")

	// ErrForbidden is returned when the requester is neither the case owner
	// nor an admin.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstream wraps failures of the external LLM service.
	ErrUpstream = errors.New("upstream ai error")
)
