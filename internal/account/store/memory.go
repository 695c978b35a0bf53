package store

import (
	"context"
	"sort"
	"sync"

	"innkeeper/internal/account/models"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// InMemoryProfileStore keeps profiles in a map for tests and local runs.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[domain.AccountID]models.Profile
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{profiles: make(map[domain.AccountID]models.Profile)}
}

func (s *InMemoryProfileStore) Insert(_ context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; ok {
		return dErrors.New(dErrors.CodeInsertFailed, "profile already exists")
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *InMemoryProfileStore) FindByID(_ context.Context, id domain.AccountID) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if profile, ok := s.profiles[id]; ok {
		return profile, nil
	}
	return models.Profile{}, ErrNotFound
}

func (s *InMemoryProfileStore) Delete(_ context.Context, id domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

// Count returns the number of stored profiles. Test helper.
func (s *InMemoryProfileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// InMemoryBookingStore keeps bookings in a map for tests and local runs.
type InMemoryBookingStore struct {
	mu       sync.RWMutex
	bookings map[domain.BookingID]models.Booking
}

func NewInMemoryBookingStore() *InMemoryBookingStore {
	return &InMemoryBookingStore{bookings: make(map[domain.BookingID]models.Booking)}
}

func (s *InMemoryBookingStore) Insert(_ context.Context, booking models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[booking.ID]; ok {
		return dErrors.New(dErrors.CodeInsertFailed, "booking already exists")
	}
	s.bookings[booking.ID] = booking
	return nil
}

func (s *InMemoryBookingStore) ListByOwner(_ context.Context, ownerID domain.AccountID) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []models.Booking
	for _, b := range s.bookings {
		if b.OwnerID == ownerID {
			owned = append(owned, b)
		}
	}
	// Deterministic order keeps partial-failure tests stable.
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}

func (s *InMemoryBookingStore) Delete(_ context.Context, id domain.BookingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

// CountByOwner returns the number of bookings owned by an account. Test helper.
func (s *InMemoryBookingStore) CountByOwner(ownerID domain.AccountID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.bookings {
		if b.OwnerID == ownerID {
			n++
		}
	}
	return n
}
