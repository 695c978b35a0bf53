// Package token issues and validates staff session tokens. The transport
// layer's auth middleware uses it to resolve the acting staff member; a
// request without a resolvable actor fails with NOT_AUTHENTICATED before
// any lifecycle operation runs.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// SessionTTL is the lifetime of a staff access token. Account-wide
// revocation markers use the same duration so they outlive every token
// that could still be in circulation.
const SessionTTL = 12 * time.Hour

// Claims are the JWT claims for staff access tokens.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// Service signs and validates HS256 tokens.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// Generate mints an access token for a staff account.
func (s *Service) Generate(accountID domain.AccountID, expiresIn time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return t.SignedString(s.signingKey)
}

// Validate parses and verifies a token, returning its claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeNotAuthenticated, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeNotAuthenticated, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeNotAuthenticated, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotAuthenticated, "invalid token claims")
	}
	return claims, nil
}

// AccountIDOf validates the token and extracts the staff account id.
func (s *Service) AccountIDOf(tokenString string) (domain.AccountID, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return domain.AccountID{}, err
	}
	id, err := domain.ParseAccountID(claims.AccountID)
	if err != nil {
		return domain.AccountID{}, dErrors.New(dErrors.CodeNotAuthenticated, "invalid token claims")
	}
	return id, nil
}
