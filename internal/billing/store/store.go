// Package store provides the relational-store implementations for billing
// rows: invoices and their items, payment methods, and billing settings.
package store

import (
	dErrors "innkeeper/pkg/domain-errors"
)

// ErrNotFound keeps storage 404s consistent across the memory and Postgres
// implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")
