// Package stores implements the three persistence managers behind the API:
// the append-only registration store, the two-tier session store and the
// shared post collection. Each manager serializes its whole-collection
// read-modify-write cycles behind a mutex so concurrent requests cannot drop
// each other's updates.
package stores

import "errors"

// Sentinel errors shared by all stores; controllers map them to HTTP codes.
var (
	// ErrValidation indicates a missing or malformed required field.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor does not own the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrStorage indicates the backing collection could not be written.
	ErrStorage = errors.New("storage failure")
)
