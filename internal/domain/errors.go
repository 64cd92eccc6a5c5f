package domain

import "errors"

// ErrNotFound is returned when a requested resource (review session, audit
// row, trip within a session) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. empty selection, unresolved trip name on confirm).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSessionExpired is returned when the travel backend rejects our
// credentials ({"detail": "Could not validate credentials"}). The current
// operation must abort; no partial result from that response may be used.
// Handlers should map this to HTTP 401.
var ErrSessionExpired = errors.New("backend session expired")

// ErrSessionClosed is returned when an operation targets a review session
// that has already been closed or submitted.
// Handlers should map this to HTTP 404 like any other missing resource.
var ErrSessionClosed = errors.New("review session closed")

// ErrUpstream is returned when the travel backend is unreachable or answers
// with a malformed or non-2xx response. Handlers should map this to 502.
var ErrUpstream = errors.New("travel backend error")
