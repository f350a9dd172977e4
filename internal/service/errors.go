package service

import "errors"

// Workflow errors. Handlers map these onto redirects or inline form
// messages; none of them indicates a system failure.
var (
	// ErrNotAuthorized means the acting user may not perform the
	// operation on this task or request.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotEligible means the chosen collaboration candidate is not in
	// the eligible set (self, creator, already assigned, or unknown).
	ErrNotEligible = errors.New("user is not eligible for this task")

	// ErrRequestAlreadySent means a pending request for the same task
	// and candidate already exists.
	ErrRequestAlreadySent = errors.New("request was already sent")

	// ErrInvalidInput covers form-level validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
