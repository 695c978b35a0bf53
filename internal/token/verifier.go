package token

import (
	"context"

	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// Verifier validates a presented token against the signature and the
// revocation list, both per token id (logout) and per account (deletion).
// A structurally valid token can still fail here.
type Verifier struct {
	service *Service
	revoked RevocationList
}

func NewVerifier(service *Service, revoked RevocationList) *Verifier {
	return &Verifier{service: service, revoked: revoked}
}

// VerifyToken returns the acting staff account id, or NOT_AUTHENTICATED.
func (v *Verifier) VerifyToken(ctx context.Context, tokenString string) (domain.AccountID, error) {
	claims, err := v.service.Validate(tokenString)
	if err != nil {
		return domain.AccountID{}, err
	}
	if v.revoked != nil {
		revoked, err := v.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to check token revocation")
		}
		if revoked {
			return domain.AccountID{}, dErrors.New(dErrors.CodeNotAuthenticated, "token has been revoked")
		}
	}
	id, err := domain.ParseAccountID(claims.AccountID)
	if err != nil {
		return domain.AccountID{}, dErrors.New(dErrors.CodeNotAuthenticated, "invalid token claims")
	}
	if v.revoked != nil {
		revoked, err := v.revoked.IsAccountRevoked(ctx, id.String())
		if err != nil {
			return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to check account revocation")
		}
		if revoked {
			return domain.AccountID{}, dErrors.New(dErrors.CodeNotAuthenticated, "account tokens have been revoked")
		}
	}
	return id, nil
}
