// Package store provides the relational-store implementations for profiles
// and their dependent bookings. Service packages define the interfaces they
// consume; this package satisfies them with in-memory and Postgres variants.
package store

import (
	dErrors "innkeeper/pkg/domain-errors"
)

// ErrNotFound keeps storage 404s consistent across the memory and Postgres
// implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")
