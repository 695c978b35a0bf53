package token

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList answers "has this token, or every token of this account,
// been revoked". Logout revokes a single token id; deleting a staff account
// marks the account id itself so every token minted for it dies at the
// verifier instead of surviving until expiry.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	RevokeAccount(ctx context.Context, accountID string, ttl time.Duration) error
	IsAccountRevoked(ctx context.Context, accountID string) (bool, error)
}

const (
	revokedKeyPrefix        = "trl:jti:"
	revokedAccountKeyPrefix = "trl:acct:"
)

// RedisRevocationList shares revocation state across instances.
type RedisRevocationList struct {
	client *redis.Client
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// Revoke marks a token id revoked until its natural expiry. Key existence
// is the marker; the value is irrelevant.
func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	return l.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RevokeAccount marks every token of an account revoked. The TTL must
// cover the longest-lived token that could still be outstanding.
func (l *RedisRevocationList) RevokeAccount(ctx context.Context, accountID string, ttl time.Duration) error {
	if accountID == "" {
		return nil
	}
	return l.client.Set(ctx, revokedAccountKeyPrefix+accountID, "1", ttl).Err()
}

func (l *RedisRevocationList) IsAccountRevoked(ctx context.Context, accountID string) (bool, error) {
	if accountID == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedAccountKeyPrefix+accountID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InMemoryRevocationList backs tests and Redis-less deployments.
type InMemoryRevocationList struct {
	mu       sync.RWMutex
	revoked  map[string]time.Time
	accounts map[string]time.Time
}

func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		revoked:  make(map[string]time.Time),
		accounts: make(map[string]time.Time),
	}
}

func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	expiry, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expiry), nil
}

func (l *InMemoryRevocationList) RevokeAccount(_ context.Context, accountID string, ttl time.Duration) error {
	if accountID == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[accountID] = time.Now().Add(ttl)
	return nil
}

func (l *InMemoryRevocationList) IsAccountRevoked(_ context.Context, accountID string) (bool, error) {
	if accountID == "" {
		return false, nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	expiry, ok := l.accounts[accountID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expiry), nil
}
