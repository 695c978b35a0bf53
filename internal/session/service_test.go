package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/identity"
	"innkeeper/internal/token"
	dErrors "innkeeper/pkg/domain-errors"
)

// These tests run against the real token service, identity store, and
// revocation list so a minted token is checked the same way the auth
// middleware checks it.

type sessionFixture struct {
	identities *identity.InMemoryStore
	tokens     *token.Service
	revoked    *token.InMemoryRevocationList
	verifier   *token.Verifier
	service    *Service
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		identities: identity.NewInMemoryStore(),
		tokens:     token.NewService("session-test-key", "innkeeper-test"),
		revoked:    token.NewInMemoryRevocationList(),
	}
	f.verifier = token.NewVerifier(f.tokens, f.revoked)
	f.service = New(f.identities, f.tokens, f.revoked,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return f
}

func (f *sessionFixture) seedStaff(t *testing.T, email, secret string) {
	t.Helper()
	_, err := f.identities.CreateIdentity(context.Background(), identity.CreateParams{
		Email:  email,
		Secret: secret,
	})
	require.NoError(t, err)
}

func TestLoginMintsVerifiableToken(t *testing.T) {
	f := newSessionFixture()
	f.seedStaff(t, "desk@grandhotel.test", "super-secret-pw")

	sess, err := f.service.Login(context.Background(), "desk@grandhotel.test", "super-secret-pw")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.False(t, sess.AccountID.IsNil())
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	actorID, err := f.verifier.VerifyToken(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.AccountID, actorID)
}

func TestLoginNormalizesEmail(t *testing.T) {
	f := newSessionFixture()
	f.seedStaff(t, "desk@grandhotel.test", "super-secret-pw")

	_, err := f.service.Login(context.Background(), "  Desk@GrandHotel.test ", "super-secret-pw")
	assert.NoError(t, err)
}

func TestLoginWrongSecret(t *testing.T) {
	f := newSessionFixture()
	f.seedStaff(t, "desk@grandhotel.test", "super-secret-pw")

	_, err := f.service.Login(context.Background(), "desk@grandhotel.test", "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthenticated))
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	f := newSessionFixture()
	f.seedStaff(t, "desk@grandhotel.test", "super-secret-pw")

	_, unknownErr := f.service.Login(context.Background(), "nobody@grandhotel.test", "super-secret-pw")
	_, wrongErr := f.service.Login(context.Background(), "desk@grandhotel.test", "wrong")
	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error(),
		"unknown email and wrong secret must be indistinguishable")
}

func TestLoginValidation(t *testing.T) {
	f := newSessionFixture()

	for name, pair := range map[string][2]string{
		"empty email":  {"", "super-secret-pw"},
		"empty secret": {"desk@grandhotel.test", ""},
		"both empty":   {"", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Login(context.Background(), pair[0], pair[1])
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newSessionFixture()
	f.seedStaff(t, "desk@grandhotel.test", "super-secret-pw")
	sess, err := f.service.Login(context.Background(), "desk@grandhotel.test", "super-secret-pw")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), sess.Token))

	_, err = f.verifier.VerifyToken(context.Background(), sess.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthenticated))
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newSessionFixture()
	f.seedStaff(t, "desk@grandhotel.test", "super-secret-pw")
	sess, err := f.service.Login(context.Background(), "desk@grandhotel.test", "super-secret-pw")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), sess.Token))
	assert.NoError(t, f.service.Logout(context.Background(), sess.Token))
}

func TestLogoutGarbageToken(t *testing.T) {
	f := newSessionFixture()

	err := f.service.Logout(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthenticated))
}

func TestLogoutOnlyKillsThatToken(t *testing.T) {
	f := newSessionFixture()
	f.seedStaff(t, "desk@grandhotel.test", "super-secret-pw")
	first, err := f.service.Login(context.Background(), "desk@grandhotel.test", "super-secret-pw")
	require.NoError(t, err)
	second, err := f.service.Login(context.Background(), "desk@grandhotel.test", "super-secret-pw")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), first.Token))

	_, err = f.verifier.VerifyToken(context.Background(), second.Token)
	assert.NoError(t, err, "other sessions of the same account stay valid")
}
