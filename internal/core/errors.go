package core

import "errors"

// Failure taxonomy for the signaling layer. Callers wrap these with
// fmt.Errorf("...: %w", Err...) and match with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("unavailable")
	ErrInternal     = errors.New("internal error")
)
