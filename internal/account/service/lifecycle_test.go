package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/account/models"
	"innkeeper/internal/account/store"
	"innkeeper/internal/audit"
	"innkeeper/internal/identity"
	"innkeeper/internal/token"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// These tests run the lifecycle end to end against stateful in-memory
// stores, with thin wrappers injecting faults at precise points, so the
// compensation and ordering guarantees are checked against real state
// rather than mock expectations.

type flakyProfileStore struct {
	*store.InMemoryProfileStore
	failInsert bool
	failDelete bool
}

func (s *flakyProfileStore) Insert(ctx context.Context, p models.Profile) error {
	if s.failInsert {
		return errors.New("simulated profile insert failure")
	}
	return s.InMemoryProfileStore.Insert(ctx, p)
}

func (s *flakyProfileStore) Delete(ctx context.Context, id domain.AccountID) error {
	if s.failDelete {
		return errors.New("simulated profile delete failure")
	}
	return s.InMemoryProfileStore.Delete(ctx, id)
}

type flakyBookingStore struct {
	*store.InMemoryBookingStore
	failAfter int // fail the (failAfter+1)-th delete; -1 disables
	deletes   int
}

func (s *flakyBookingStore) Delete(ctx context.Context, id domain.BookingID) error {
	if s.failAfter >= 0 && s.deletes >= s.failAfter {
		return errors.New("simulated booking delete failure")
	}
	s.deletes++
	return s.InMemoryBookingStore.Delete(ctx, id)
}

type flakyIdentityStore struct {
	*identity.InMemoryStore
	failDelete bool
}

func (s *flakyIdentityStore) DeleteIdentity(ctx context.Context, id domain.AccountID) error {
	if s.failDelete {
		return errors.New("simulated identity delete failure")
	}
	return s.InMemoryStore.DeleteIdentity(ctx, id)
}

type fixture struct {
	identities *flakyIdentityStore
	profiles   *flakyProfileStore
	bookings   *flakyBookingStore
	auditStore *audit.InMemoryStore
	revoked    *token.InMemoryRevocationList
	service    *Service
}

func newFixture() *fixture {
	f := &fixture{
		identities: &flakyIdentityStore{InMemoryStore: identity.NewInMemoryStore()},
		profiles:   &flakyProfileStore{InMemoryProfileStore: store.NewInMemoryProfileStore()},
		bookings:   &flakyBookingStore{InMemoryBookingStore: store.NewInMemoryBookingStore(), failAfter: -1},
		auditStore: audit.NewInMemoryStore(),
		revoked:    token.NewInMemoryRevocationList(),
	}
	f.service = New(f.identities, f.profiles, f.bookings,
		WithAuditPublisher(audit.NewPublisher(f.auditStore)),
		WithTokenRevoker(token.NewAccountRevoker(f.revoked)))
	return f
}

func (f *fixture) seedProfile(t *testing.T, role domain.Role) domain.AccountID {
	t.Helper()
	id := domain.NewAccountID()
	now := time.Now()
	require.NoError(t, f.profiles.InMemoryProfileStore.Insert(context.Background(), models.Profile{
		ID: id, Role: role, DisplayName: "Seeded " + role.String(), CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func (f *fixture) seedBookings(t *testing.T, ownerID domain.AccountID, n int) {
	t.Helper()
	base := time.Now()
	for i := 0; i < n; i++ {
		require.NoError(t, f.bookings.InMemoryBookingStore.Insert(context.Background(), models.Booking{
			ID:        domain.NewBookingID(),
			OwnerID:   ownerID,
			RoomCode:  "101",
			GuestName: "Guest",
			CheckIn:   base.AddDate(0, 0, i),
			CheckOut:  base.AddDate(0, 0, i+2),
			Status:    models.BookingConfirmed,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestCreateAccountHappyPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)

	account, err := f.service.CreateAccount(ctx, adminID, CreateAccountParams{
		Email:       "Front.Desk@GrandHotel.test",
		Secret:      "super-secret-pw",
		Role:        domain.RoleReceptionist,
		DisplayName: "Front Desk",
		Phone:       "+1 555 0101",
	})
	require.NoError(t, err)

	assert.False(t, account.ID.IsNil())
	assert.Equal(t, "front.desk@grandhotel.test", account.Email, "email is normalized")
	assert.Equal(t, account.ID, account.Profile.ID, "profile shares the identity id")
	assert.True(t, f.identities.Exists(account.ID))

	stored, err := f.profiles.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReceptionist, stored.Role)

	events := f.auditStore.All()
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventAccountCreated, events[0].Kind)
	assert.Equal(t, account.ID.String(), events[0].SubjectID)
}

// Compensation invariant (create): if profile insertion fails, the identity
// created in the same call no longer exists afterwards.
func TestCreateAccountProfileFailureLeavesNoIdentity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)
	f.profiles.failInsert = true

	_, err := f.service.CreateAccount(ctx, adminID, CreateAccountParams{
		Email:       "orphan@grandhotel.test",
		Secret:      "super-secret-pw",
		Role:        domain.RoleReceptionist,
		DisplayName: "Orphan Candidate",
	})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInsertFailed, dErrors.CodeOf(err))

	assert.Equal(t, 0, f.identities.Count(), "compensation must remove the just-created identity")
	assert.Equal(t, 1, f.profiles.Count(), "only the seeded admin remains")
}

// Scenario A: manager deleting an admin is denied and nothing changes.
func TestDeleteAccountManagerCannotDeleteAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	managerID := f.seedProfile(t, domain.RoleManager)
	adminID := f.seedProfile(t, domain.RoleAdmin)
	f.seedBookings(t, adminID, 2)

	err := f.service.DeleteAccount(ctx, managerID, adminID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodePermissionDenied, dErrors.CodeOf(err))

	assert.Equal(t, 2, f.profiles.Count(), "no profile was touched")
	assert.Equal(t, 2, f.bookings.CountByOwner(adminID), "no booking was touched")
	assert.Empty(t, f.auditStore.All(), "denied operations emit no events")
}

func TestDeleteAccountHappyPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)

	account, err := f.service.CreateAccount(ctx, adminID, CreateAccountParams{
		Email:       "leaver@grandhotel.test",
		Secret:      "super-secret-pw",
		Role:        domain.RoleReceptionist,
		DisplayName: "Leaver",
	})
	require.NoError(t, err)
	f.seedBookings(t, account.ID, 3)

	require.NoError(t, f.service.DeleteAccount(ctx, adminID, account.ID))

	assert.Equal(t, 0, f.bookings.CountByOwner(account.ID))
	_, err = f.profiles.FindByID(ctx, account.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, f.identities.Exists(account.ID))

	kinds := []audit.Kind{}
	for _, e := range f.auditStore.All() {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, audit.EventAccountDeleted)
}

// Scenario D / ordering invariant: a fault after removing 2 of 3 bookings
// leaves exactly 1 booking, the profile, and the identity intact, and the
// error reports the partial progress.
func TestDeleteAccountPartialBookingCleanup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)
	targetID := f.seedProfile(t, domain.RoleReceptionist)
	f.seedBookings(t, targetID, 3)
	f.bookings.failAfter = 2

	err := f.service.DeleteAccount(ctx, adminID, targetID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeDependentCleanupFailed, dErrors.CodeOf(err))

	details := dErrors.DetailsOf(err)
	require.NotNil(t, details)
	assert.Equal(t, 2, details["removed"])
	assert.Equal(t, 1, details["remaining"])

	assert.Equal(t, 1, f.bookings.CountByOwner(targetID))
	_, err = f.profiles.FindByID(ctx, targetID)
	assert.NoError(t, err, "profile must survive a cleanup abort")
}

// Identity deletion failing after the profile was removed triggers the
// last-resort compensation: the profile row comes back.
func TestDeleteAccountIdentityFailureRestoresProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)

	account, err := f.service.CreateAccount(ctx, adminID, CreateAccountParams{
		Email:       "sticky@grandhotel.test",
		Secret:      "super-secret-pw",
		Role:        domain.RoleReceptionist,
		DisplayName: "Sticky",
	})
	require.NoError(t, err)
	f.seedBookings(t, account.ID, 2)
	f.identities.failDelete = true

	err = f.service.DeleteAccount(ctx, adminID, account.ID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeIdentityDeleteFailed, dErrors.CodeOf(err))

	restored, findErr := f.profiles.FindByID(ctx, account.ID)
	require.NoError(t, findErr, "profile must be re-inserted by the compensation")
	assert.Equal(t, account.Profile.ID, restored.ID)
	assert.True(t, f.identities.Exists(account.ID), "identity was never removed")

	// Documented gap: bookings removed before the abort stay removed.
	assert.Equal(t, 0, f.bookings.CountByOwner(account.ID))
}

// If the profile re-insert compensation itself fails, the result is the
// distinct INCONSISTENT error and an audit event flagging the account.
func TestDeleteAccountFailedCompensationIsInconsistent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)
	targetID := f.seedProfile(t, domain.RoleReceptionist)
	f.identities.failDelete = true
	f.profiles.failInsert = true // blocks the compensation re-insert

	err := f.service.DeleteAccount(ctx, adminID, targetID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInconsistent, dErrors.CodeOf(err))

	events := f.auditStore.All()
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventAccountInconsistent, events[0].Kind)
	assert.Equal(t, targetID.String(), events[0].SubjectID)
}

// A deleted account's outstanding tokens must die at the verifier instead
// of surviving until their natural expiry.
func TestDeleteAccountRevokesOutstandingTokens(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)
	targetID := f.seedProfile(t, domain.RoleReceptionist)

	tokens := token.NewService("lifecycle-test-key", "innkeeper-test")
	verifier := token.NewVerifier(tokens, f.revoked)
	outstanding, err := tokens.Generate(targetID, time.Hour)
	require.NoError(t, err)
	_, err = verifier.VerifyToken(ctx, outstanding)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteAccount(ctx, adminID, targetID))

	_, err = verifier.VerifyToken(ctx, outstanding)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotAuthenticated, dErrors.CodeOf(err))

	adminToken, err := tokens.Generate(adminID, time.Hour)
	require.NoError(t, err)
	_, err = verifier.VerifyToken(ctx, adminToken)
	assert.NoError(t, err, "other accounts' tokens are untouched")
}

type failingRevoker struct{}

func (failingRevoker) RevokeAccountTokens(context.Context, domain.AccountID) error {
	return errors.New("simulated revocation failure")
}

// Token revocation runs after the account is already gone, so its failure
// is logged rather than turned into a deletion failure.
func TestDeleteAccountRevocationFailureDoesNotFailDeletion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adminID := f.seedProfile(t, domain.RoleAdmin)
	targetID := f.seedProfile(t, domain.RoleReceptionist)

	svc := New(f.identities, f.profiles, f.bookings,
		WithAuditPublisher(audit.NewPublisher(f.auditStore)),
		WithTokenRevoker(failingRevoker{}))

	require.NoError(t, svc.DeleteAccount(ctx, adminID, targetID))

	_, err := f.profiles.FindByID(ctx, targetID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
