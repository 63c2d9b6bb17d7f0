// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios without
// inspecting driver-specific errors. For example, ErrNotFound indicates
// that no row exists for a phone key, which the services treat as a
// benign terminal outcome rather than a failure.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Services
// treat it as "record does not exist yet" and either create the row
// lazily or log and stop, depending on the operation.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating an admin whose email is
// already registered. The auth handler translates this into an HTTP
// 409 response.
var ErrEmailExists = errors.New("email already exists")
