package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so callers can map outcomes with errors.Is without
// leaking infrastructure details.
var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("store unavailable")
)
