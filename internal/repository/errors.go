// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// string matching. For example, ErrUserNotFound stands in for the
// "absent" outcome of a lookup so that handlers never dereference a
// missing record, while the duplicate errors let the register handler
// report which unique field collided.
package repository

import "errors"

// ErrUserNotFound is returned when a lookup matches no user. Lookup
// misses are represented with this sentinel rather than surfaced as
// raw sql.ErrNoRows so that handlers stay decoupled from database/sql.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when an insert collides with an
// existing username. Handlers should translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert collides with an existing
// email address. Handlers should translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
