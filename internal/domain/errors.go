package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// listing or photo does not exist.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input breaks a rule the service enforces
// (missing listing Id, photo pointing at another listing, unknown sort key).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnavailable is returned when an optional backend, such as photo object
// storage, is not configured. Handlers map this to HTTP 503.
var ErrUnavailable = errors.New("unavailable")
