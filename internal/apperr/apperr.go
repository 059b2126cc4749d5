// Package apperr defines the sentinel errors shared across the persistence
// and authorization layers. Callers match them with errors.Is.
package apperr

import "errors"

var (
	// ErrUnauthorized means there is no active session, or it has expired.
	// The UI layer maps this one kind to a forced logout.
	ErrUnauthorized = errors.New("unauthorized: session invalid or expired")

	// ErrNotFound means a mutation targeted an id with no matching owned row.
	ErrNotFound = errors.New("not found: target inaccessible")

	// ErrDeleteFailure means a delete targeted an id with no matching owned row.
	ErrDeleteFailure = errors.New("delete failure: not found or access denied")

	// ErrConflict means a signup collided with an already-registered email.
	ErrConflict = errors.New("identity already exists in registry")

	// ErrAuth is the single generic login failure. Unknown email and wrong
	// password both return it, so neither case is disclosed.
	ErrAuth = errors.New("credentials rejected")

	// ErrValidation means malformed signup input.
	ErrValidation = errors.New("invalid registration data")

	// ErrStorageFull means the underlying store rejected a write. Not
	// retryable without the user freeing space.
	ErrStorageFull = errors.New("storage full: unable to commit data")
)
