package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"innkeeper/internal/account/models"
	"innkeeper/internal/account/service/mocks"
	"innkeeper/internal/account/store"
	"innkeeper/internal/identity"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockIdentity  *mocks.MockIdentityStore
	mockProfiles  *mocks.MockProfileStore
	mockBookings  *mocks.MockBookingStore
	mockPublisher *mocks.MockAuditPublisher
	service       *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockIdentity = mocks.NewMockIdentityStore(s.ctrl)
	s.mockProfiles = mocks.NewMockProfileStore(s.ctrl)
	s.mockBookings = mocks.NewMockBookingStore(s.ctrl)
	s.mockPublisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.mockIdentity, s.mockProfiles, s.mockBookings,
		WithAuditPublisher(s.mockPublisher))
}

func adminProfile(id domain.AccountID) models.Profile {
	now := time.Now()
	return models.Profile{ID: id, Role: domain.RoleAdmin, DisplayName: "Admin", CreatedAt: now, UpdatedAt: now}
}

func profileWithRole(id domain.AccountID, role domain.Role) models.Profile {
	now := time.Now()
	return models.Profile{ID: id, Role: role, DisplayName: "Staff", CreatedAt: now, UpdatedAt: now}
}

func validParams() CreateAccountParams {
	return CreateAccountParams{
		Email:       "new.hire@grandhotel.test",
		Secret:      "super-secret-pw",
		Role:        domain.RoleReceptionist,
		DisplayName: "New Hire",
	}
}

func (s *ServiceSuite) TestCreateAccount_ValidationRejectsBeforeAnyLookup() {
	ctx := context.Background()
	actorID := domain.NewAccountID()

	for name, mutate := range map[string]func(*CreateAccountParams){
		"empty email":     func(p *CreateAccountParams) { p.Email = "" },
		"malformed email": func(p *CreateAccountParams) { p.Email = "not-an-email" },
		"short secret":    func(p *CreateAccountParams) { p.Secret = "short" },
		"unknown role":    func(p *CreateAccountParams) { p.Role = "owner" },
		"no display name": func(p *CreateAccountParams) { p.DisplayName = "  " },
	} {
		s.Run(name, func() {
			params := validParams()
			mutate(&params)
			_, err := s.service.CreateAccount(ctx, actorID, params)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *ServiceSuite) TestCreateAccount_ActorLookupFailures() {
	ctx := context.Background()
	actorID := domain.NewAccountID()

	s.Run("store error", func() {
		s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(models.Profile{}, errors.New("db down"))

		_, err := s.service.CreateAccount(ctx, actorID, validParams())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeFetchFailed))
	})

	s.Run("actor not found", func() {
		s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(models.Profile{}, store.ErrNotFound)

		_, err := s.service.CreateAccount(ctx, actorID, validParams())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestCreateAccount_NonAdminDeniedWithoutWrites() {
	ctx := context.Background()
	actorID := domain.NewAccountID()

	for _, role := range []domain.Role{domain.RoleManager, domain.RoleReceptionist} {
		s.Run(role.String(), func() {
			s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(profileWithRole(actorID, role), nil)
			// No identity or profile writes expected at all.

			_, err := s.service.CreateAccount(ctx, actorID, validParams())
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
		})
	}
}

func (s *ServiceSuite) TestCreateAccount_IdentityFailureMeansNoProfileInsert() {
	ctx := context.Background()
	actorID := domain.NewAccountID()

	s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(adminProfile(actorID), nil)
	s.mockIdentity.EXPECT().CreateIdentity(ctx, gomock.Any()).
		Return(domain.AccountID{}, errors.New("identity store down"))

	_, err := s.service.CreateAccount(ctx, actorID, validParams())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInsertFailed))
}

func (s *ServiceSuite) TestCreateAccount_ProfileFailureCompensatesIdentity() {
	ctx := context.Background()
	actorID := domain.NewAccountID()
	newID := domain.NewAccountID()

	s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(adminProfile(actorID), nil)
	s.mockIdentity.EXPECT().CreateIdentity(ctx, gomock.Any()).Return(newID, nil)
	s.mockProfiles.EXPECT().Insert(ctx, gomock.Any()).Return(errors.New("unique violation"))
	// The compensation must target exactly the identity just created.
	s.mockIdentity.EXPECT().DeleteIdentity(gomock.Any(), newID).Return(nil)

	_, err := s.service.CreateAccount(ctx, actorID, validParams())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInsertFailed))
}

func (s *ServiceSuite) TestDeleteAccount_TargetLookupFailures() {
	ctx := context.Background()
	actorID := domain.NewAccountID()
	targetID := domain.NewAccountID()

	s.Run("target not found", func() {
		s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(adminProfile(actorID), nil)
		s.mockProfiles.EXPECT().FindByID(ctx, targetID).Return(models.Profile{}, store.ErrNotFound)

		err := s.service.DeleteAccount(ctx, actorID, targetID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("target lookup error", func() {
		s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(adminProfile(actorID), nil)
		s.mockProfiles.EXPECT().FindByID(ctx, targetID).Return(models.Profile{}, errors.New("db down"))

		err := s.service.DeleteAccount(ctx, actorID, targetID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeFetchFailed))
	})
}

func (s *ServiceSuite) TestDeleteAccount_BookingListFailureAbortsBeforeDeletes() {
	ctx := context.Background()
	actorID := domain.NewAccountID()
	targetID := domain.NewAccountID()

	s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(adminProfile(actorID), nil)
	s.mockProfiles.EXPECT().FindByID(ctx, targetID).Return(profileWithRole(targetID, domain.RoleReceptionist), nil)
	s.mockBookings.EXPECT().ListByOwner(gomock.Any(), targetID).Return(nil, errors.New("db down"))

	err := s.service.DeleteAccount(ctx, actorID, targetID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeFetchFailed))
}

func (s *ServiceSuite) TestDeleteAccount_IdentityAlreadyGoneIsNotAFailure() {
	ctx := context.Background()
	actorID := domain.NewAccountID()
	targetID := domain.NewAccountID()

	s.mockProfiles.EXPECT().FindByID(ctx, actorID).Return(adminProfile(actorID), nil)
	s.mockProfiles.EXPECT().FindByID(ctx, targetID).Return(profileWithRole(targetID, domain.RoleReceptionist), nil)
	s.mockBookings.EXPECT().ListByOwner(gomock.Any(), targetID).Return(nil, nil)
	s.mockProfiles.EXPECT().Delete(gomock.Any(), targetID).Return(nil)
	s.mockIdentity.EXPECT().DeleteIdentity(gomock.Any(), targetID).Return(identity.ErrNotFound)
	s.mockPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	err := s.service.DeleteAccount(ctx, actorID, targetID)
	s.Require().NoError(err)
}
