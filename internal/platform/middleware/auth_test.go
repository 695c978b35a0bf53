package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/token"
	"innkeeper/pkg/domain"
)

func newAuthChain(t *testing.T) (*token.Service, *token.InMemoryRevocationList, http.Handler, *domain.AccountID) {
	t.Helper()
	svc := token.NewService("test-signing-key", "innkeeper-test")
	revoked := token.NewInMemoryRevocationList()
	verifier := token.NewVerifier(svc, revoked)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen domain.AccountID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetActorID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return svc, revoked, RequireAuth(verifier, logger)(next), &seen
}

func TestRequireAuthResolvesActor(t *testing.T) {
	svc, _, handler, seen := newAuthChain(t)
	actorID := domain.NewAccountID()
	tokenString, err := svc.Generate(actorID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, actorID, *seen)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	_, _, handler, _ := newAuthChain(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_AUTHENTICATED")
}

func TestRequireAuthMalformedToken(t *testing.T) {
	_, _, handler, _ := newAuthChain(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	svc, _, handler, _ := newAuthChain(t)
	tokenString, err := svc.Generate(domain.NewAccountID(), -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRevokedToken(t *testing.T) {
	svc, revoked, handler, _ := newAuthChain(t)
	actorID := domain.NewAccountID()
	tokenString, err := svc.Generate(actorID, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(tokenString)
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(context.Background(), claims.ID, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetActorIDAbsent(t *testing.T) {
	assert.True(t, GetActorID(context.Background()).IsNil())
}

func TestRequireAuthRejectsDeletedAccountToken(t *testing.T) {
	svc := token.NewService("test-signing-key", "innkeeper-test")
	revoked := token.NewInMemoryRevocationList()
	verifier := token.NewVerifier(svc, revoked)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(verifier, logger)(next)

	actorID := domain.NewAccountID()
	tokenString, err := svc.Generate(actorID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, token.NewAccountRevoker(revoked).RevokeAccountTokens(context.Background(), actorID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_AUTHENTICATED")
}
