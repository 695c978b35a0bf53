//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"innkeeper/internal/account/models"
	"innkeeper/internal/account/store"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
	"innkeeper/pkg/testutil/containers"
)

const accountSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	role TEXT NOT NULL,
	display_name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	room_code TEXT NOT NULL,
	guest_name TEXT NOT NULL,
	check_in TIMESTAMPTZ NOT NULL,
	check_out TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

type AccountStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	profiles *store.PostgresProfileStore
	bookings *store.PostgresBookingStore
}

func TestAccountStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AccountStoreSuite))
}

func (s *AccountStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), accountSchema)
	s.profiles = store.NewPostgresProfileStore(s.postgres.DB)
	s.bookings = store.NewPostgresBookingStore(s.postgres.DB)
}

func (s *AccountStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "bookings", "profiles"))
}

func newProfile(role domain.Role) models.Profile {
	now := time.Now().Truncate(time.Microsecond)
	return models.Profile{
		ID:          domain.NewAccountID(),
		Role:        role,
		DisplayName: "Test " + role.String(),
		Phone:       "+1 555 0100",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *AccountStoreSuite) TestProfileRoundTrip() {
	ctx := context.Background()
	profile := newProfile(domain.RoleManager)

	s.Require().NoError(s.profiles.Insert(ctx, profile))

	found, err := s.profiles.FindByID(ctx, profile.ID)
	s.Require().NoError(err)
	s.Equal(profile.ID, found.ID)
	s.Equal(domain.RoleManager, found.Role)
	s.Equal(profile.DisplayName, found.DisplayName)
	s.Equal(profile.Phone, found.Phone)
}

func (s *AccountStoreSuite) TestProfileDuplicateInsert() {
	ctx := context.Background()
	profile := newProfile(domain.RoleReceptionist)

	s.Require().NoError(s.profiles.Insert(ctx, profile))
	err := s.profiles.Insert(ctx, profile)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInsertFailed))
}

func (s *AccountStoreSuite) TestProfileDelete() {
	ctx := context.Background()
	profile := newProfile(domain.RoleAdmin)
	s.Require().NoError(s.profiles.Insert(ctx, profile))

	s.Require().NoError(s.profiles.Delete(ctx, profile.ID))

	_, err := s.profiles.FindByID(ctx, profile.ID)
	s.ErrorIs(err, store.ErrNotFound)

	s.ErrorIs(s.profiles.Delete(ctx, profile.ID), store.ErrNotFound)
}

func (s *AccountStoreSuite) TestBookingsListOrderedByCreation() {
	ctx := context.Background()
	ownerID := domain.NewAccountID()
	base := time.Now().Truncate(time.Microsecond)

	// Insert out of order; list must come back oldest first.
	for _, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		s.Require().NoError(s.bookings.Insert(ctx, models.Booking{
			ID:        domain.NewBookingID(),
			OwnerID:   ownerID,
			RoomCode:  "204",
			GuestName: "Guest",
			CheckIn:   base,
			CheckOut:  base.AddDate(0, 0, 2),
			Status:    models.BookingConfirmed,
			CreatedAt: base.Add(offset),
		}))
	}

	listed, err := s.bookings.ListByOwner(ctx, ownerID)
	s.Require().NoError(err)
	s.Require().Len(listed, 3)
	s.True(listed[0].CreatedAt.Before(listed[1].CreatedAt))
	s.True(listed[1].CreatedAt.Before(listed[2].CreatedAt))
}

func (s *AccountStoreSuite) TestBookingDelete() {
	ctx := context.Background()
	ownerID := domain.NewAccountID()
	booking := models.Booking{
		ID:        domain.NewBookingID(),
		OwnerID:   ownerID,
		RoomCode:  "101",
		GuestName: "Guest",
		CheckIn:   time.Now(),
		CheckOut:  time.Now().AddDate(0, 0, 1),
		Status:    models.BookingConfirmed,
		CreatedAt: time.Now(),
	}
	s.Require().NoError(s.bookings.Insert(ctx, booking))

	s.Require().NoError(s.bookings.Delete(ctx, booking.ID))

	listed, err := s.bookings.ListByOwner(ctx, ownerID)
	s.Require().NoError(err)
	s.Empty(listed)

	s.ErrorIs(s.bookings.Delete(ctx, booking.ID), store.ErrNotFound)
}
