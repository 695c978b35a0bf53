package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "innkeeper-test")
	accountID := domain.NewAccountID()

	raw, err := svc.Generate(accountID, time.Hour)
	require.NoError(t, err)

	got, err := svc.AccountIDOf(raw)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID, "tokens must carry a jti for revocation")
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", "innkeeper-test")

	raw, err := svc.Generate(domain.NewAccountID(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthenticated))
}

func TestValidateWrongKey(t *testing.T) {
	issuer := NewService("key-one", "innkeeper-test")
	verifier := NewService("key-two", "innkeeper-test")

	raw, err := issuer.Generate(domain.NewAccountID(), time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(raw)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthenticated))
}

func TestInMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	list := NewInMemoryRevocationList()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Empty jti is a no-op on both sides.
	require.NoError(t, list.Revoke(ctx, "", time.Hour))
	revoked, err = list.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryRevocationListAccounts(t *testing.T) {
	ctx := context.Background()
	list := NewInMemoryRevocationList()

	revoked, err := list.IsAccountRevoked(ctx, "acct-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.RevokeAccount(ctx, "acct-1", time.Hour))

	revoked, err = list.IsAccountRevoked(ctx, "acct-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Account markers never shadow token-id markers.
	revoked, err = list.IsRevoked(ctx, "acct-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestVerifierRejectsRevokedAccount(t *testing.T) {
	ctx := context.Background()
	svc := NewService("test-signing-key", "innkeeper-test")
	list := NewInMemoryRevocationList()
	verifier := NewVerifier(svc, list)
	accountID := domain.NewAccountID()

	raw, err := svc.Generate(accountID, time.Hour)
	require.NoError(t, err)
	_, err = verifier.VerifyToken(ctx, raw)
	require.NoError(t, err)

	require.NoError(t, NewAccountRevoker(list).RevokeAccountTokens(ctx, accountID))

	_, err = verifier.VerifyToken(ctx, raw)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthenticated))
}
