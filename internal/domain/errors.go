package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// trip state does not exist. Handlers map it to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing coordinates on a corridor query).
// Handlers map it to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
