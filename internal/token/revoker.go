package token

import (
	"context"

	"innkeeper/pkg/domain"
)

// AccountRevoker invalidates every outstanding token of an account by
// marking the account id on the revocation list for the full session
// lifetime. The account lifecycle calls it when a staff account is deleted.
type AccountRevoker struct {
	list RevocationList
}

func NewAccountRevoker(list RevocationList) *AccountRevoker {
	return &AccountRevoker{list: list}
}

func (r *AccountRevoker) RevokeAccountTokens(ctx context.Context, id domain.AccountID) error {
	return r.list.RevokeAccount(ctx, id.String(), SessionTTL)
}
