// Package session opens and closes staff sessions. A login exchanges
// credentials for a signed access token; a logout revokes the presented
// token so it stops working before its natural expiry.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"innkeeper/internal/token"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// CredentialStore verifies a staff member's credentials against the
// identity backend.
type CredentialStore interface {
	Authenticate(ctx context.Context, email, secret string) (domain.AccountID, error)
}

// TokenService mints and parses access tokens.
type TokenService interface {
	Generate(accountID domain.AccountID, expiresIn time.Duration) (string, error)
	Validate(tokenString string) (*token.Claims, error)
}

// Revoker records a single token id as revoked.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// Service handles the login and logout flows.
type Service struct {
	credentials CredentialStore
	tokens      TokenService
	revoked     Revoker
	ttl         time.Duration
	logger      *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTTL overrides the default session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func New(credentials CredentialStore, tokens TokenService, revoked Revoker, opts ...Option) *Service {
	s := &Service{
		credentials: credentials,
		tokens:      tokens,
		revoked:     revoked,
		ttl:         token.SessionTTL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is an opened staff session.
type Session struct {
	Token     string           `json:"token"`
	AccountID domain.AccountID `json:"account_id"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Login verifies credentials and mints an access token. Credential
// failures come back as NOT_AUTHENTICATED regardless of whether the email
// exists.
func (s *Service) Login(ctx context.Context, email, secret string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || secret == "" {
		return Session{}, dErrors.New(dErrors.CodeValidation, "email and secret are required")
	}

	accountID, err := s.credentials.Authenticate(ctx, email, secret)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotAuthenticated) {
			s.logger.Info("login rejected", "email", email)
			return Session{}, err
		}
		return Session{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to verify credentials")
	}

	expiresAt := time.Now().Add(s.ttl)
	tokenString, err := s.tokens.Generate(accountID, s.ttl)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to mint token")
	}

	s.logger.Info("session opened", "account_id", accountID.String())
	return Session{Token: tokenString, AccountID: accountID, ExpiresAt: expiresAt}, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
// A token that fails validation cannot be revoked and surfaces that error
// instead.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return err
	}

	// Validation already rejects expired tokens; a non-positive remainder
	// can only come from clock skew and needs no revocation entry.
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to revoke token")
	}

	s.logger.Info("session closed", "account_id", claims.AccountID)
	return nil
}
