// Package service implements the staff-account lifecycle: provisioning an
// account across the identity store and the relational profile store, and
// deprovisioning it with dependent-record cleanup. The two stores share no
// transaction, so every multi-step write runs as a compensated saga.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"innkeeper/internal/account/authz"
	"innkeeper/internal/account/models"
	"innkeeper/internal/account/store"
	"innkeeper/internal/audit"
	"innkeeper/internal/identity"
	"innkeeper/internal/platform/metrics"
	"innkeeper/internal/saga"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// ProfileStore is the slice of the relational store this service consumes.
type ProfileStore interface {
	Insert(ctx context.Context, profile models.Profile) error
	FindByID(ctx context.Context, id domain.AccountID) (models.Profile, error)
	Delete(ctx context.Context, id domain.AccountID) error
}

// BookingStore covers the dependent records that must be removed before a
// profile can go.
type BookingStore interface {
	ListByOwner(ctx context.Context, ownerID domain.AccountID) ([]models.Booking, error)
	Delete(ctx context.Context, id domain.BookingID) error
}

// IdentityStore mirrors identity.Store; redeclared here so mocks are
// generated against the consumer's contract.
type IdentityStore interface {
	CreateIdentity(ctx context.Context, params identity.CreateParams) (domain.AccountID, error)
	DeleteIdentity(ctx context.Context, id domain.AccountID) error
}

// AuditPublisher records lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TokenRevoker invalidates every outstanding session token of an account.
type TokenRevoker interface {
	RevokeAccountTokens(ctx context.Context, id domain.AccountID) error
}

// Service is the lifecycle manager for staff accounts.
type Service struct {
	identities IdentityStore
	profiles   ProfileStore
	bookings   BookingStore
	exec       *saga.Executor
	logger     *slog.Logger
	publisher  AuditPublisher
	revoker    TokenRevoker
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTokenRevoker makes account deletion also revoke the target's
// outstanding session tokens.
func WithTokenRevoker(revoker TokenRevoker) Option {
	return func(s *Service) { s.revoker = revoker }
}

// New constructs a Service.
func New(identities IdentityStore, profiles ProfileStore, bookings BookingStore, opts ...Option) *Service {
	s := &Service{
		identities: identities,
		profiles:   profiles,
		bookings:   bookings,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	sagaOpts := []saga.Option{saga.WithLogger(s.logger)}
	if s.metrics != nil {
		sagaOpts = append(sagaOpts, saga.WithObserver(s.metrics.ObserveSaga))
	}
	s.exec = saga.New(sagaOpts...)
	return s
}

// CreateAccountParams carries the inputs for provisioning.
type CreateAccountParams struct {
	Email       string
	Secret      string
	Role        domain.Role
	DisplayName string
	Phone       string
}

func (p *CreateAccountParams) normalize() {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.Phone = strings.TrimSpace(p.Phone)
}

func (p CreateAccountParams) validate() error {
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(p.Secret) < 8 {
		return dErrors.New(dErrors.CodeValidation, "secret must be at least 8 characters")
	}
	if !p.Role.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	if p.DisplayName == "" {
		return dErrors.New(dErrors.CodeValidation, "display name is required")
	}
	return nil
}

// CreateAccount provisions a staff account: an identity-store principal and
// a profile row sharing its id. Only admins may provision. If the profile
// insert fails, the just-created identity is deleted again so no orphaned
// principal survives the call.
func (s *Service) CreateAccount(ctx context.Context, actorID domain.AccountID, params CreateAccountParams) (models.Account, error) {
	params.normalize()
	if err := params.validate(); err != nil {
		return models.Account{}, err
	}

	actor, err := s.resolveProfile(ctx, actorID)
	if err != nil {
		return models.Account{}, err
	}
	if !authz.CanProvision(actor.Role) {
		return models.Account{}, dErrors.New(dErrors.CodePermissionDenied, "only admins may create accounts")
	}

	var newID domain.AccountID
	var profile models.Profile

	steps := []saga.Step{
		{
			Name: "create-identity",
			Forward: func(ctx context.Context) error {
				id, err := s.identities.CreateIdentity(ctx, identity.CreateParams{
					Email:  params.Email,
					Secret: params.Secret,
					Metadata: map[string]string{
						"role":         params.Role.String(),
						"display_name": params.DisplayName,
					},
				})
				if err != nil {
					if dErrors.HasCode(err, dErrors.CodeInsertFailed) {
						return err
					}
					return dErrors.Wrap(err, dErrors.CodeInsertFailed, "failed to create identity")
				}
				newID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.identities.DeleteIdentity(ctx, newID)
			},
		},
		{
			Name: "insert-profile",
			Forward: func(ctx context.Context) error {
				now := time.Now()
				profile = models.Profile{
					ID:          newID,
					Role:        params.Role,
					DisplayName: params.DisplayName,
					Phone:       params.Phone,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := s.profiles.Insert(ctx, profile); err != nil {
					if dErrors.HasCode(err, dErrors.CodeInsertFailed) {
						return err
					}
					return dErrors.Wrap(err, dErrors.CodeInsertFailed, "failed to insert profile")
				}
				return nil
			},
			// Final step: nothing to undo.
		},
	}

	if err := s.exec.Run(ctx, "account.create", steps); err != nil {
		return models.Account{}, err
	}

	s.logAudit(ctx, audit.Event{
		Kind:      audit.EventAccountCreated,
		ActorID:   actorID.String(),
		SubjectID: newID.String(),
		Attrs:     map[string]any{"email": params.Email, "role": params.Role.String()},
	})
	if s.metrics != nil {
		s.metrics.AccountsCreated.Inc()
	}

	return models.Account{ID: newID, Email: params.Email, Profile: profile}, nil
}

// DeleteAccount deprovisions a staff account. Order matters: dependent
// bookings first, then the profile row, then the identity. If the identity
// deletion fails, the profile is re-inserted as a last-resort compensation;
// if that also fails the call surfaces INCONSISTENT. Bookings removed
// before an abort are never restored. On success the target's outstanding
// session tokens are revoked.
func (s *Service) DeleteAccount(ctx context.Context, actorID, targetID domain.AccountID) error {
	actor, err := s.resolveProfile(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.resolveProfile(ctx, targetID)
	if err != nil {
		return err
	}

	if !authz.CanDelete(actor.Role, target.Role) {
		return dErrors.Newf(dErrors.CodePermissionDenied,
			"%s may not delete %s accounts", actor.Role, target.Role)
	}

	steps := []saga.Step{
		{
			Name: "cleanup-bookings",
			Forward: func(ctx context.Context) error {
				return s.removeOwnedBookings(ctx, targetID)
			},
			// Removed bookings stay removed; restoring them on a later
			// failure is explicitly out of scope and the gap is surfaced
			// through the error details instead.
		},
		{
			Name: "delete-profile",
			Forward: func(ctx context.Context) error {
				if err := s.profiles.Delete(ctx, targetID); err != nil {
					return dErrors.Wrap(err, dErrors.CodeProfileDeleteFailed, "failed to delete profile")
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.profiles.Insert(ctx, target)
			},
			CriticalCompensation: true,
		},
		{
			Name: "delete-identity",
			Forward: func(ctx context.Context) error {
				if err := s.identities.DeleteIdentity(ctx, targetID); err != nil {
					// An identity that is already gone does not block the
					// rest of the teardown.
					if errors.Is(err, identity.ErrNotFound) {
						return nil
					}
					if dErrors.HasCode(err, dErrors.CodeIdentityDeleteFailed) {
						return err
					}
					return dErrors.Wrap(err, dErrors.CodeIdentityDeleteFailed, "failed to delete identity")
				}
				return nil
			},
		},
	}

	if err := s.exec.Run(ctx, "account.delete", steps); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInconsistent) {
			s.logger.Error("account deletion left inconsistent state",
				"target_id", targetID.String(), "error", err)
			s.logAudit(ctx, audit.Event{
				Kind:      audit.EventAccountInconsistent,
				ActorID:   actorID.String(),
				SubjectID: targetID.String(),
			})
			if s.metrics != nil {
				s.metrics.InconsistentStates.Inc()
			}
		}
		return err
	}

	// The account is gone; its outstanding tokens must not keep working
	// until expiry. Revocation failure cannot fail the deletion anymore,
	// so it is logged and the tokens age out on their own.
	if s.revoker != nil {
		if err := s.revoker.RevokeAccountTokens(ctx, targetID); err != nil {
			s.logger.Error("failed to revoke deleted account's tokens",
				"target_id", targetID.String(), "error", err)
		}
	}

	s.logAudit(ctx, audit.Event{
		Kind:      audit.EventAccountDeleted,
		ActorID:   actorID.String(),
		SubjectID: targetID.String(),
		Attrs:     map[string]any{"role": target.Role.String()},
	})
	if s.metrics != nil {
		s.metrics.AccountsDeleted.Inc()
	}
	return nil
}

// removeOwnedBookings deletes the target's bookings one row at a time and
// stops at the first failure so the caller can see exactly how far cleanup
// got. Deliberately not a batch delete: partial-failure visibility is worth
// the extra round trips.
func (s *Service) removeOwnedBookings(ctx context.Context, ownerID domain.AccountID) error {
	owned, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to list bookings")
	}

	for i, booking := range owned {
		if err := s.bookings.Delete(ctx, booking.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeDependentCleanupFailed, "failed to delete booking").
				WithDetails(map[string]any{
					"removed":   i,
					"remaining": len(owned) - i,
				})
		}
	}
	return nil
}

func (s *Service) resolveProfile(ctx context.Context, id domain.AccountID) (models.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Profile{}, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return models.Profile{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to load profile")
	}
	return profile, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to emit audit event", "kind", event.Kind, "error", err)
	}
}
