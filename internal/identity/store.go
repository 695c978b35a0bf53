// Package identity is the port to the external authentication store that
// holds credentialed principals. The relational profile row shares the id
// returned here; nothing enforces that pairing atomically, which is why the
// account lifecycle runs as a compensated saga.
package identity

import (
	"context"

	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// ErrNotFound keeps identity-store 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "identity not found")

// CreateParams carries everything the identity store needs to mint a
// principal. Metadata travels opaquely; the role at creation time rides
// along for the identity provider's own display purposes.
type CreateParams struct {
	Email    string
	Secret   string
	Metadata map[string]string
}

// Store is the capability surface this core consumes from the identity
// backend: create and delete by id, plus credential verification for the
// session login flow. Credential storage itself stays on the provider's
// side of the line.
type Store interface {
	CreateIdentity(ctx context.Context, params CreateParams) (domain.AccountID, error)
	DeleteIdentity(ctx context.Context, id domain.AccountID) error
	Authenticate(ctx context.Context, email, secret string) (domain.AccountID, error)
}
