package identity

import (
	"context"
	"sync"

	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// InMemoryStore keeps principals in a map. It backs unit tests and local
// development; it intentionally favors clarity over performance.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[domain.AccountID]CreateParams
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{identities: make(map[domain.AccountID]CreateParams)}
}

func (s *InMemoryStore) CreateIdentity(_ context.Context, params CreateParams) (domain.AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.identities {
		if existing.Email == params.Email {
			return domain.AccountID{}, dErrors.New(dErrors.CodeInsertFailed, "email already registered")
		}
	}
	id := domain.NewAccountID()
	s.identities[id] = params
	return id, nil
}

func (s *InMemoryStore) DeleteIdentity(_ context.Context, id domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[id]; !ok {
		return ErrNotFound
	}
	delete(s.identities, id)
	return nil
}

// Authenticate resolves credentials to an account id. Unknown email and
// wrong secret produce the same error so a caller cannot tell which
// addresses are registered.
func (s *InMemoryStore) Authenticate(_ context.Context, email, secret string) (domain.AccountID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, existing := range s.identities {
		if existing.Email == email && existing.Secret == secret {
			return id, nil
		}
	}
	return domain.AccountID{}, dErrors.New(dErrors.CodeNotAuthenticated, "invalid credentials")
}

// Exists reports whether a principal is present. Test helper.
func (s *InMemoryStore) Exists(id domain.AccountID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.identities[id]
	return ok
}

// Count returns the number of stored principals. Test helper.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities)
}
