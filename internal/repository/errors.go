// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound maps to an HTTP 404 while ErrEmailExists maps
// to a 409 on signup.
package repository

import "errors"

// ErrNotFound is returned when a user, image, comment or rating lookup
// matches no row. Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a signup collides with an existing
// email or username. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("account already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")
